package main

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for mvbb.

To load completions:

Bash:

  $ source <(mvbb completion bash)

  To load completions for each session, execute once:
  Linux:
    $ mvbb completion bash > /etc/bash_completion.d/mvbb
  macOS:
    $ mvbb completion bash > /usr/local/etc/bash_completion.d/mvbb

Zsh:

  If shell completion is not already enabled in your environment,
  you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  To load completions for each session, execute once:
  $ mvbb completion zsh > "${fpath[1]}/_mvbb"

Fish:

  $ mvbb completion fish | source

PowerShell:

  PS> mvbb completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
