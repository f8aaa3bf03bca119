package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rebind-dev/rebind/internal/errors"
	"github.com/rebind-dev/rebind/pkg/bind"
	"github.com/rebind-dev/rebind/pkg/render"
	"github.com/rebind-dev/rebind/pkg/server"
)

func renderCmd() *cobra.Command {
	var (
		configPath string
		pretty     bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the bound document once",
		Long: `Parse the document, bind the reference graph, and print the
resulting HTML. Useful for static output and for checking what a
graph does to a template without starting the server.

Examples:
  rebind render
  rebind render --pretty
  rebind render -o out.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(configPath, pretty, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to rebind.json (default ./rebind.json)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runRender(configPath string, pretty bool, output string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	root, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	graph, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	doc, err := server.NewDocument(root, graph, bind.WithConfig(bindConfig(cfg)))
	if err != nil {
		return errors.New(errors.CategoryDocument, "cannot bind document").Wrap(err)
	}

	r := render.New(render.Config{
		Pretty: pretty || cfg.Render.Pretty,
		Indent: cfg.Render.Indent,
	})
	html, err := r.ToString(doc.Root())
	if err != nil {
		return errors.New(errors.CategoryDocument, "cannot render document").Wrap(err)
	}

	if output == "" {
		os.Stdout.WriteString(html + "\n")
		return nil
	}
	if err := os.WriteFile(output, []byte(html+"\n"), 0644); err != nil {
		return errors.New(errors.CategoryCLI, "cannot write output").WithDetail(output).Wrap(err)
	}
	info("wrote %s", output)
	return nil
}
