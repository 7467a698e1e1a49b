package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/config"
)

// newConfigCmd 配置文件命令组，不需要打开存储
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置文件",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "生成默认配置文件",
		Long:  `将默认配置写入 --config 指定的路径（YAML 或 JSON 由扩展名决定），已存在时需加 --force 覆盖。`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s（使用 --force 覆盖）", a.configPath)
			}

			if err := config.Save(config.DefaultConfig(), a.configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ 已生成配置：%s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "覆盖已存在的配置文件")

	cmd.AddCommand(initCmd)
	return cmd
}
