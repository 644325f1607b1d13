package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для просмотра каталога workflow.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect the workflow catalog",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflow types",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflows, err := client.ListWorkflows()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "REQUIRED_KEYS", "PLAN", "DESCRIPTION"}
			rows := make([][]string, len(workflows))
			for i, wf := range workflows {
				rows[i] = []string{
					wf.Name,
					strings.Join(wf.RequiredKeys, ","),
					strings.Join(wf.Plan, " -> "),
					wf.Description,
				}
			}

			out.Print(headers, rows, workflows)
			return nil
		},
	}
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show workflow type details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			wf, err := client.GetWorkflow(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"NAME", "REQUIRED_KEYS", "PLAN", "DESCRIPTION"},
				[][]string{{
					wf.Name,
					strings.Join(wf.RequiredKeys, ","),
					strings.Join(wf.Plan, " -> "),
					wf.Description,
				}},
				wf,
			)
			return nil
		},
	}
}
