package main

import (
	"fmt"
	"os"

	"github.com/effective-security/toolbox/callbacks"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/registry"
	"github.com/effective-security/toolbox/toolkit"
	"github.com/effective-security/toolbox/tools"
	"github.com/spf13/cobra"
)

type toolInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description"`
	Parameters   any    `json:"parameters,omitempty"`
	ReturnDirect bool   `json:"return_direct,omitempty"`
}

type cli struct {
	configFile string
	prompt     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "toolbox",
		Short:         "toolbox - agent tools registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Path to the config file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tools available for an agent turn",
		Args:  cobra.NoArgs,
		RunE:  c.runList,
	}
	listCmd.Flags().BoolVar(&c.prompt, "prompt", false, "Print the prompt-ready descriptions")

	callCmd := &cobra.Command{
		Use:   "call <name> [json]",
		Short: "Invoke the tool with JSON arguments",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  c.runCall,
	}
	callCmd.Flags().BoolVarP(&c.verbose, "verbose", "v", false, "Print the tool events to stderr")

	rootCmd.AddCommand(listCmd, callCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) load(cmd *cobra.Command) (*toolkit.Toolkit, error) {
	return toolkit.Load(cmd.Context(), c.configFile)
}

func (c *cli) runList(cmd *cobra.Command, _ []string) error {
	tk, err := c.load(cmd)
	if err != nil {
		return err
	}
	defer tk.Close()

	list := registry.Sorted(tk.Tools(cmd.Context()))
	if c.prompt {
		fmt.Fprint(cmd.OutOrStdout(), tools.GetDescriptions(list...))
		return nil
	}

	infos := make([]toolInfo, 0, len(list))
	for _, t := range list {
		d := t.(*tools.Descriptor)
		infos = append(infos, toolInfo{
			Name:         d.Name(),
			Title:        d.Title(),
			Description:  d.Description(),
			Parameters:   d.Schema(),
			ReturnDirect: d.ReturnDirect(),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), llmutils.ToJSONIndent(infos))
	return nil
}

func (c *cli) runCall(cmd *cobra.Command, args []string) error {
	tk, err := c.load(cmd)
	if err != nil {
		return err
	}
	defer tk.Close()

	if c.verbose {
		tk.WithCallback(callbacks.NewPrinter(cmd.ErrOrStderr(), callbacks.ModeVerbose))
	}

	input := "{}"
	if len(args) > 1 {
		input = args[1]
	}
	res, err := tk.Call(cmd.Context(), args[0], input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res)
	return nil
}
