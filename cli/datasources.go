package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	vantage "github.com/vantage-bi/vantage-go"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

// NewDatasourcesCmd builds the datasources command group.
func (c *CLI) NewDatasourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasources",
		Aliases: []string{"ds"},
		Short:   "Manage datasources",
	}

	cmd.AddCommand(
		c.newListCmd(),
		c.newGetCmd(),
		c.newConnectionsCmd(),
		c.newDownloadCmd(),
		c.newPublishCmd(),
		c.newDeleteCmd(),
	)
	return cmd
}

func (c *CLI) newListCmd() *cobra.Command {
	var (
		pageSize   int
		filterType string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasources on the site",
		Run: func(cmd *cobra.Command, args []string) {
			var opts []vantagetypes.ListOption
			if pageSize > 0 {
				opts = append(opts, vantage.WithPageSize(pageSize))
			}
			if filterType != "" {
				opts = append(opts, vantage.WithFilter("type", "eq", filterType))
			}

			var items []vantagetypes.Datasource
			var err error
			if all {
				items, err = c.client.Datasources().ListAll(cmd.Context(), opts...)
			} else {
				items, _, err = c.client.Datasources().List(cmd.Context(), opts...)
			}
			if err != nil {
				printError(cmd, "failed to list datasources: %v", err)
				return
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tPROJECT")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Type, item.ProjectName)
			}
			w.Flush()
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "items per page")
	cmd.Flags().StringVar(&filterType, "type", "", "filter by datasource type")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	return cmd
}

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <datasource-id>",
		Short: "Show a datasource",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ds, err := c.client.Datasources().Get(cmd.Context(), args[0])
			if err != nil {
				printError(cmd, "failed to get datasource: %v", err)
				return
			}

			cmd.Printf("ID:          %s\n", ds.ID)
			cmd.Printf("Name:        %s\n", ds.Name)
			cmd.Printf("Type:        %s\n", ds.Type)
			cmd.Printf("Project:     %s\n", ds.ProjectName)
			cmd.Printf("Owner:       %s\n", ds.OwnerID)
			cmd.Printf("Certified:   %t\n", ds.Certified)
			if !ds.UpdatedAt.IsZero() {
				cmd.Printf("Updated:     %s\n", ds.UpdatedAt.Format("2006-01-02 15:04"))
			}
		},
	}
}

func (c *CLI) newConnectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connections <datasource-id>",
		Short: "List the connections embedded in a datasource",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			conns, err := c.client.Datasources().Connections(cmd.Context(), args[0])
			if err != nil {
				printError(cmd, "failed to get connections: %v", err)
				return
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSERVER\tPORT\tUSER")
			for _, conn := range conns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					conn.ID, conn.Type, conn.ServerAddress, conn.ServerPort, conn.UserName)
			}
			w.Flush()
		},
	}
}

func (c *CLI) newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <datasource-id>",
		Short: "Download a datasource file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path, err := c.client.Datasources().DownloadFile(cmd.Context(), args[0], output)
			if err != nil {
				printError(cmd, "failed to download datasource: %v", err)
				return
			}
			cmd.Println(color.New(color.FgGreen).Sprintf("downloaded to %s", path))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory")
	return cmd
}

func (c *CLI) newPublishCmd() *cobra.Command {
	var (
		name      string
		projectID string
		overwrite bool
		appendTo  bool
	)

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Publish a datasource file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mode := vantagetypes.PublishModeCreateNew
			switch {
			case overwrite:
				mode = vantagetypes.PublishModeOverwrite
			case appendTo:
				mode = vantagetypes.PublishModeAppend
			}

			ds := vantagetypes.Datasource{Name: name, ProjectID: projectID}
			published, err := c.client.Datasources().PublishFile(cmd.Context(), ds, args[0], mode)
			if err != nil {
				printError(cmd, "failed to publish datasource: %v", err)
				return
			}
			cmd.Println(color.New(color.FgGreen).Sprintf("published %s (%s)", published.Name, published.ID))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "datasource name (defaults to the file name)")
	cmd.Flags().StringVar(&projectID, "project", "", "target project ID")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing datasource")
	cmd.Flags().BoolVar(&appendTo, "append", false, "append to an existing extract")
	cmd.MarkFlagsMutuallyExclusive("overwrite", "append")
	return cmd
}

func (c *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <datasource-id> [datasource-id...]",
		Short: "Delete one or more datasources",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				if err := c.client.Datasources().Delete(cmd.Context(), args[0]); err != nil {
					printError(cmd, "failed to delete datasource: %v", err)
					return
				}
				cmd.Println(color.New(color.FgGreen).Sprintf("deleted %s", args[0]))
				return
			}

			result, err := c.client.Datasources().DeleteMany(cmd.Context(), args)
			if err != nil {
				printError(cmd, "failed to delete datasources: %v", err)
				return
			}
			for _, id := range result.Deleted {
				cmd.Println(color.New(color.FgGreen).Sprintf("deleted %s", id))
			}
			for _, failure := range result.Errors {
				cmd.Println(color.New(color.FgRed).Sprintf("failed %s: %s", failure.ID, failure.Message))
			}
		},
	}
}
