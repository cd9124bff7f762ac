package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/catalog"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/theme"
)

func newTemplatesCmd() *cobra.Command {
	var (
		category string
		popular  bool
		search   string
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse notification templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var templates []model.NotificationTemplate
			switch {
			case popular:
				templates = catalog.Popular()
			case search != "":
				templates = catalog.Search(search)
			case category != "":
				templates = catalog.ByCategory(model.TemplateCategory(category))
			default:
				templates = catalog.All()
			}

			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render("no matching templates"))
				return nil
			}
			renderTemplates(cmd.OutOrStdout(), templates)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&category, "category", "c", "", "work, personal, health, finance, education or general")
	f.BoolVar(&popular, "popular", false, "show popular templates")
	f.StringVarP(&search, "search", "s", "", "search name, description and use case")
	return cmd
}
