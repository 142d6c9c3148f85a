package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/pulselang/pulse/cmd/pulse/internal/prompt"
	"github.com/pulselang/pulse/cmd/pulse/internal/scaffold"
	"github.com/pulselang/pulse/cmd/pulse/internal/ui"
)

func newNewCommand() *cobra.Command {
	var (
		template      string
		noInteractive bool
		port          int
		sourcemap     bool
		gitInit       bool
	)

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new Pulse project",
		Long:  `Creates a new Pulse project with a starter component, configuration and dev setup.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectName := args[0]

			isTerminal := false
			if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
				isTerminal = true
			}

			if isTerminal && !noInteractive {
				config, err := ui.RunCreateTUI(projectName)
				if err != nil {
					if err.Error() == "cancelled" {
						fmt.Println("❌ Project creation cancelled.")
						return nil
					}
					// fall back to line prompts when the TUI cannot run
					return runPromptCreate(projectName)
				}
				if config.GitInit {
					dir := config.Directory
					if dir == "" {
						dir = config.Name
					}
					if err := initGitRepo(dir); err != nil {
						fmt.Printf("⚠️  Failed to initialize git: %v\n", err)
					}
				}
				printNextSteps(config.Name)
				return nil
			}

			config := &scaffold.ProjectConfig{
				Name:      projectName,
				Template:  template,
				Port:      port,
				SourceMap: sourcemap,
				GitInit:   gitInit,
			}
			if err := scaffold.Generate(config); err != nil {
				return fmt.Errorf("failed to generate project: %w", err)
			}
			if config.GitInit {
				if err := initGitRepo(config.Directory); err != nil {
					fmt.Printf("⚠️  Failed to initialize git: %v\n", err)
				}
			}
			printNextSteps(projectName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "counter", "Template to use (counter, todo)")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Force non-interactive mode")
	cmd.Flags().IntVar(&port, "port", 5173, "Dev server port")
	cmd.Flags().BoolVar(&sourcemap, "sourcemap", false, "Enable source maps in pulse.yml")
	cmd.Flags().BoolVar(&gitInit, "git-init", true, "Initialize git repository")

	return cmd
}

// runPromptCreate is the line-based fallback wizard.
func runPromptCreate(projectName string) error {
	p := prompt.New()

	fmt.Println("\n🚀 Welcome to Pulse!")
	fmt.Printf("Creating project: %s\n\n", projectName)

	templates := []string{
		"counter - Minimal counter component",
		"todo - Todo list with a persisted store",
	}
	templateIdx := p.Select("Select a project template:", templates, 0)

	port := p.Port("Development server port", 5173)

	sourcemap := p.Confirm("Generate source maps?", false)
	gitInit := p.Confirm("Initialize git repository?", true)

	config := &scaffold.ProjectConfig{
		Name:      projectName,
		Template:  scaffold.Templates[templateIdx],
		Port:      port,
		SourceMap: sourcemap,
		GitInit:   gitInit,
	}
	if err := scaffold.Generate(config); err != nil {
		return fmt.Errorf("failed to generate project: %w", err)
	}

	if gitInit {
		fmt.Println("📁 Initializing git repository...")
		if err := initGitRepo(config.Directory); err != nil {
			fmt.Printf("⚠️  Failed to initialize git: %v\n", err)
		}
	}

	printNextSteps(projectName)
	return nil
}

func printNextSteps(projectName string) {
	fmt.Printf("\n✨ Project '%s' created successfully!\n", projectName)
	fmt.Println("\n📚 Next steps:")
	fmt.Printf("   cd %s\n", projectName)
	fmt.Println("   pulse dev")
	fmt.Println("\n📖 Documentation: https://pulselang.dev/docs")
}

// initGitRepo initializes a git repository with an initial commit.
func initGitRepo(projectPath string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "add", ".")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "commit", "-m", "Initial commit")
	cmd.Dir = projectPath
	return cmd.Run()
}
