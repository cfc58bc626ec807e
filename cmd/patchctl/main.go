// Command patchctl is a small command-line front end over the engine
// packages: validate and compile a project file, migrate an old save to the
// current schema, trace the routed path of every edge in it, or list the
// node types declared in a YAML catalog.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/registry"
	"github.com/patchbay/enginecore/routing"
	"github.com/patchbay/enginecore/serial"
)

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cmd, path := os.Args[1], os.Args[2]

	switch cmd {
	case "validate":
		cmdValidate(path)
	case "compile":
		cmdCompile(path)
	case "migrate":
		cmdMigrate(path)
	case "trace":
		cmdTrace(path)
	case "catalog":
		cmdCatalog(path)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: patchctl <validate|compile|migrate|trace> <project.json>")
	fmt.Fprintln(os.Stderr, "       patchctl catalog <catalog.yaml>")
	os.Exit(2)
}

func builtinRegistry() *registry.Registry {
	reg, errs := registry.NewBuilder().
		WithTypes(registry.StdCatalog()).
		Build()
	if errs != nil {
		log.Fatalf("built-in catalog failed validation: %v", errs)
	}
	return reg
}

func loadProject(path string) (*registry.Registry, serial.Project) {
	reg := builtinRegistry()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	result := serial.Load(f, serial.Project{})
	if !result.OK {
		diag.WriteIssueTable(os.Stdout, "load errors", result.Errors)
		os.Exit(1)
	}
	if len(result.Warnings) > 0 {
		diag.WriteIssueTable(os.Stdout, "load warnings", result.Warnings)
	}
	return reg, result.Value
}

func compileProject(reg *registry.Registry, project serial.Project) diag.Result[*build.CompiledGraph] {
	router := routing.NewRouter()
	routes := router.RouteAll(project.Graph, reg)
	if !routes.OK {
		return diag.Result[*build.CompiledGraph]{OK: false, Errors: routes.Errors}
	}
	return build.Compile(project.Graph, reg, routing.Delays(routes.Value))
}

func cmdValidate(path string) {
	fmt.Println("==============================================================")
	fmt.Println("STAGE 1: LOAD PROJECT")
	fmt.Println("==============================================================")
	reg, project := loadProject(path)
	fmt.Printf("loaded %d nodes, %d edges\n\n", len(project.Graph.Nodes), len(project.Graph.Edges))

	fmt.Println("==============================================================")
	fmt.Println("STAGE 2: ROUTE, COMPILE & VALIDATE")
	fmt.Println("==============================================================")
	result := compileProject(reg, project)
	build.Render(os.Stdout, result)

	if !result.OK {
		os.Exit(1)
	}
	fmt.Println("\nvalidate: OK")
}

func cmdCompile(path string) {
	reg, project := loadProject(path)
	result := compileProject(reg, project)
	build.Render(os.Stdout, result)
	if !result.OK {
		os.Exit(1)
	}
	fmt.Printf("\ncompiled graph: %d nodes, %d edges\n", len(result.Value.NodeOrder), len(result.Value.Edges))
}

func cmdMigrate(path string) {
	_, project := loadProject(path)

	out, err := os.Create(path)
	if err != nil {
		log.Fatalf("rewrite %s: %v", path, err)
	}
	defer out.Close()

	if err := serial.Save(out, project); err != nil {
		log.Fatalf("save migrated project: %v", err)
	}
	fmt.Printf("migrated %s to schema version %d\n", path, serial.CurrentVersion)
}

// cmdCatalog lists the node types declared in a YAML catalog file. Loaded
// entries carry metadata only (behaviors cannot live in YAML), which is
// all a listing needs.
func cmdCatalog(path string) {
	defs, err := registry.LoadCatalogYAMLFile(path)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("catalog " + path)
	t.AppendHeader(table.Row{"type", "category", "archetype", "in", "out", "ctl", "default"})
	for _, def := range defs {
		t.AppendRow(table.Row{
			def.Type, registry.DisplayLabel(def.Category), string(def.Archetype),
			def.Inputs, def.Outputs, def.ControlPorts, def.DefaultParam,
		})
	}
	if len(defs) == 0 {
		t.AppendRow(table.Row{"-", "-", "-", "-", "-", "-", "-"})
	}
	t.Render()
}

func cmdTrace(path string) {
	reg, project := loadProject(path)
	router := routing.NewRouter()

	result := router.RouteAll(project.Graph, reg)
	if !result.OK {
		diag.WriteIssueTable(os.Stdout, "routing errors", result.Errors)
		os.Exit(1)
	}

	for _, e := range project.Graph.Edges {
		route, ok := result.Value[e.ID]
		if !ok {
			continue
		}
		fmt.Printf("%s: length=%d delay=%.3f ticks, path=%s\n", e.ID, route.TotalLength, route.Delay, route.SVGPathD)
	}
}
