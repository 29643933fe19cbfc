package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for haven.

The completion command allows you to generate shell completion scripts for
bash, zsh, fish, and powershell. This enables tab-completion for commands,
flags, and arguments in your shell.

Usage:
  haven completion bash       Generate bash completion script
  haven completion zsh        Generate zsh completion script
  haven completion fish       Generate fish completion script
  haven completion powershell Generate powershell completion script

Installation Instructions:

Bash:
  # Load completion temporarily (current session only):
  source <(haven completion bash)

  # Install completion permanently:
  # Linux:
  haven completion bash > ~/.local/share/bash-completion/completions/haven

  # macOS (requires bash-completion from Homebrew):
  haven completion bash > $(brew --prefix)/etc/bash_completion.d/haven

Zsh:
  # Load completion temporarily (current session only):
  source <(haven completion zsh)

  # Install completion permanently:
  # Add to ~/.zshrc:
  echo 'fpath=(~/.zsh/completion $fpath)' >> ~/.zshrc
  echo 'autoload -Uz compinit && compinit' >> ~/.zshrc

  # Generate completion file:
  mkdir -p ~/.zsh/completion
  haven completion zsh > ~/.zsh/completion/_haven

  # Then restart your shell

Fish:
  # Install completion permanently:
  haven completion fish > ~/.config/fish/completions/haven.fish

PowerShell:
  # Open your PowerShell profile:
  notepad $PROFILE

  # Add this line to your profile:
  haven completion powershell | Out-String | Invoke-Expression

  # Save and restart PowerShell`,
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Annotations: offline(),
	Run: func(cmd *cobra.Command, args []string) {
		generateCompletion(cli.GetDeps(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// generateCompletion generates the appropriate completion script based on shell type
func generateCompletion(deps *cli.Deps, shell string) {
	var err error

	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(deps.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(deps.Stdout)
	case "fish":
		err = rootCmd.GenFishCompletion(deps.Stdout, true)
	case "powershell":
		err = rootCmd.GenPowerShellCompletionWithDesc(deps.Stdout)
	default:
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unsupported shell '%s'\n", shell)
		_, _ = fmt.Fprintln(deps.Stderr, "Supported shells: bash, zsh, fish, powershell")
		deps.Exit(1)
		return
	}

	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to generate %s completion: %v\n", shell, err)
		deps.Exit(1)
		return
	}
}
