package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/report"
)

// modelCmd represents the model command
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "저장된 모델 조회",
	Long: `저장 슬롯의 모델 정보와 상태(absent, present_valid, present_stale)를 조회합니다.

Example:
  go run ./cmd/salescast model info
  go run ./cmd/salescast model state
  go run ./cmd/salescast model delete`,
}

var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "모델 파일 및 메타데이터 출력",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			PrintHeader("Model")
			report.ModelInfo(os.Stdout, a.store.Info(cmd.Context()))
			return nil
		})
	},
}

var modelStateCmd = &cobra.Command{
	Use:   "state",
	Short: "현재 데이터 대비 모델 상태",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			series, _, err := m.LoadSeries(ctx)
			if err != nil {
				return err
			}

			st := a.store.State(ctx, series)
			PrintKeyValue("State", string(st.State), 8)
			if st.Reason != "" {
				PrintKeyValue("Reason", st.Reason, 8)
			}
			if st.State == modelstore.StatePresentStale {
				PrintWarning("run `salescast train` to refresh the model")
			}
			return nil
		})
	},
}

var modelDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "모델 슬롯 비우기",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.store.Delete(cmd.Context()); err != nil {
				return fmt.Errorf("delete model: %w", err)
			}
			PrintSuccess("model deleted from " + a.store.Location())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelInfoCmd, modelStateCmd, modelDeleteCmd)
}
