package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для управления runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage workflow runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunStartCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunTraceCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowType string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(ListRunsOpts{
				WorkflowType: workflowType,
				Status:       status,
				Limit:        limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW", "STATUS", "ERROR", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{r.ID, r.WorkflowType, r.Status, truncate(r.ErrorSummary, 60), r.CreatedAt}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowType, "workflow", "", "Filter by workflow type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, COMPLETED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newRunStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var params []string
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "start WORKFLOW_TYPE",
		Short: "Start a new workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateRunRequest{
				IdempotencyKey: idempotencyKey,
			}

			if len(params) > 0 {
				req.Params = make(map[string]any)
				for _, kv := range params {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid param format %q, expected KEY=VALUE", kv)
					}
					req.Params[parts[0]] = parts[1]
				}
			}

			run, err := client.CreateRun(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run started: %s", run.ID))
			out.Print(
				[]string{"ID", "WORKFLOW", "STATUS", "CREATED"},
				[][]string{{run.ID, run.WorkflowType, run.Status, run.CreatedAt}},
				run,
			)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&params, "param", nil, "Workflow params as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (repeated calls return the same run)")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "WORKFLOW", "STATUS", "ERROR", "STARTED", "COMPLETED"},
				[][]string{{
					run.ID, run.WorkflowType, run.Status,
					truncate(run.ErrorSummary, 60), run.StartedAt, run.CompletedAt,
				}},
				run,
			)
			return nil
		},
	}
}

func newRunTraceCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "trace RUN_ID",
		Short: "Show run execution trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			entries, err := client.GetRunTrace(args[0])
			if err != nil {
				return err
			}

			headers := []string{"SEQ", "ACTOR", "PAYLOAD", "TIMESTAMP"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					fmt.Sprintf("%d", e.Seq), e.Actor,
					truncate(compactJSON(e.Payload), 80), e.Timestamp,
				}
			}

			out.Print(headers, rows, entries)
			return nil
		},
	}
}

// truncate обрезает строку до max символов для табличного вывода.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// compactJSON сериализует payload в одну строку.
func compactJSON(v map[string]any) string {
	if len(v) == 0 {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
