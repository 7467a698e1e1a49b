package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// newSettingsCmd 设置命令组
func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看或修改用户设置",
	}

	cmd.AddCommand(newSettingsShowCmd(a), newSettingsSetCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前设置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.store.GetUserSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			customPrompt := "(默认)"
			if settings.CustomPrompt != "" {
				customPrompt = preview(settings.CustomPrompt, 60)
			}

			printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"language", string(settings.Language)},
				{"provider", string(settings.Provider)},
				{"apiKey", maskKey(settings.APIKey)},
				{"baseUrl", settings.BaseURL},
				{"modelName", settings.ModelName},
				{"customPrompt", customPrompt},
			})
			return nil
		},
	}
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var (
		language     string
		provider     string
		apiKey       string
		baseURL      string
		modelName    string
		customPrompt string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "修改设置（只修改指定的字段）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.store.GetUserSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("language") {
				lang := models.Language(language)
				if lang != models.LanguageZh && lang != models.LanguageEn {
					return fmt.Errorf("unsupported language: %s (zh|en)", language)
				}
				settings.Language = lang
			}
			if flags.Changed("provider") {
				p := models.Provider(provider).Normalize()
				if p != models.ProviderGemini && p != models.ProviderOpenAI {
					return fmt.Errorf("unsupported provider: %s (gemini|openai-compatible)", provider)
				}
				settings.Provider = p
			}
			if flags.Changed("api-key") {
				settings.APIKey = apiKey
			}
			if flags.Changed("base-url") {
				settings.BaseURL = baseURL
			}
			if flags.Changed("model") {
				settings.ModelName = modelName
			}
			if flags.Changed("prompt") {
				settings.CustomPrompt = customPrompt
			}

			if err := a.store.SaveUserSettings(cmd.Context(), settings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ 设置已保存")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&language, "language", "", "总结语言 (zh|en)")
	flags.StringVar(&provider, "provider", "", "AI 提供商 (gemini|openai-compatible)")
	flags.StringVar(&apiKey, "api-key", "", "API key")
	flags.StringVar(&baseURL, "base-url", "", "OpenAI 兼容接口地址")
	flags.StringVar(&modelName, "model", "", "模型名称")
	flags.StringVar(&customPrompt, "prompt", "", "自定义系统提示词，传空字符串恢复默认")
	return cmd
}
