// meshconv is a CLI utility for inspecting and converting 3D model files.
// It drives the same import pipeline as the viewer, without a GL context.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshworks/meshstudio/internal/engine/exporter"
	"github.com/meshworks/meshstudio/internal/engine/importer"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/texture"
	"github.com/meshworks/meshstudio/internal/logger"
	"github.com/meshworks/meshstudio/pkg/formats"
)

func main() {
	// The pipeline logs through the global logger; keep the console
	// quiet unless something goes wrong.
	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert", "conv":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshconv - 3D model inspection and conversion utility

Usage:
  meshconv <command> [options]

Commands:
  info <file>                Show records, geometry and material summary
  convert <in> <out.glb>     Convert a model to binary glTF

Convert options:
  -scale <f>                 Uniform scale applied on import (default 1)
  -normals                   Generate flat normals for meshes without any
  -smooth                    Average generated normals at shared positions
  -double-sided              Disable backface culling on all materials

Supported input formats: glTF (.gltf/.glb), FBX, OBJ

Examples:
  meshconv info chair.fbx
  meshconv convert chair.fbx chair.glb
  meshconv convert -scale 0.01 -normals -smooth scene.obj scene.glb`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshconv info <file>")
		os.Exit(1)
	}
	path := args[0]

	kind, err := formats.Detect(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	records := importFile(path, importer.Options{})

	var verts, tris int
	materials := make(map[string]bool)
	for _, r := range records {
		verts += r.Geometry.VertexCount()
		tris += r.Geometry.DrawRange().Count / 3
		if r.Material != nil {
			materials[r.Material.Name] = true
		}
	}

	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Format:    %s\n", kind)
	fmt.Printf("Records:   %d\n", len(records))
	fmt.Printf("Materials: %d\n", len(materials))
	fmt.Printf("Vertices:  %d\n", verts)
	fmt.Printf("Triangles: %d\n", tris)
	fmt.Println()

	for i, r := range records {
		fmt.Printf("%3d  %-28s %8d verts %8d tris  %s\n",
			i+1, r.Name,
			r.Geometry.VertexCount(),
			r.Geometry.DrawRange().Count/3,
			materialSummary(r))
	}
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	scale := fs.Float64("scale", 1, "Uniform scale applied on import")
	genNormals := fs.Bool("normals", false, "Generate flat normals for meshes without any")
	smooth := fs.Bool("smooth", false, "Average generated normals at shared positions")
	doubleSided := fs.Bool("double-sided", false, "Disable backface culling on all materials")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshconv convert [options] <in> <out.glb>")
		os.Exit(1)
	}
	in, out := fs.Arg(0), fs.Arg(1)
	if !strings.EqualFold(filepath.Ext(out), ".glb") {
		fmt.Fprintln(os.Stderr, "Error: output must be a .glb file")
		os.Exit(1)
	}

	records := importFile(in, importer.Options{
		GenerateNormals: *genNormals,
		SmoothNormals:   *smooth,
		DoubleSided:     *doubleSided,
		Scale:           float32(*scale),
	})

	if err := exporter.SaveGLB(out, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var verts int
	for _, r := range records {
		verts += r.Geometry.VertexCount()
	}
	fmt.Printf("%s -> %s (%d records, %d vertices)\n", in, out, len(records), verts)
}

func importFile(path string, opts importer.Options) []*model.Record {
	pipe := importer.NewPipeline(texture.NewStore(), nil)
	pipe.SetOptions(opts)

	records, err := pipe.ImportFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "Error: file contains no renderable geometry")
		os.Exit(1)
	}
	return records
}

// materialSummary renders one record's material as "name ALPHA [maps]".
func materialSummary(r *model.Record) string {
	m := r.Material
	if m == nil {
		return "(no material)"
	}

	var maps []string
	if m.BaseColorMap != nil {
		maps = append(maps, "base")
	}
	if m.NormalMap != nil {
		maps = append(maps, "normal")
	}
	if m.MetalnessMap != nil || m.RoughnessMap != nil {
		maps = append(maps, "metal-rough")
	}
	if m.AOMap != nil {
		maps = append(maps, "ao")
	}
	if m.AlphaMap != nil {
		maps = append(maps, "alpha")
	}

	name := m.Name
	if name == "" {
		name = "(unnamed)"
	}
	s := fmt.Sprintf("%s %s", name, m.AlphaMode)
	if m.DoubleSided {
		s += " 2-sided"
	}
	if len(maps) > 0 {
		s += " [" + strings.Join(maps, ",") + "]"
	}
	return s
}
