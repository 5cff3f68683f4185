package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/tourprofile/pkg/config"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	yamlConfig, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	// Load SQLite configuration
	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := compareControllers(yamlConfig.Controllers, sqliteConfig.Controllers)
	mismatches += compareSection("Render", yamlConfig.Render, sqliteConfig.Render)
	mismatches += compareSection("Cache", yamlConfig.Cache, sqliteConfig.Cache)

	if mismatches > 0 {
		fmt.Printf("\n%d section(s) differ\n", mismatches)
		os.Exit(1)
	}
	fmt.Println("\nTest completed!")
}

// compareControllers matches controllers by type since SQLite returns them
// sorted and YAML keeps file order
func compareControllers(yaml, sqlite []config.ControllerData) int {
	fmt.Printf("Controllers - YAML: %d, SQLite: %d\n", len(yaml), len(sqlite))

	diff := cmp.Diff(yaml, sqlite, cmpopts.SortSlices(func(a, b config.ControllerData) bool {
		return a.Type < b.Type
	}), cmpopts.EquateEmpty())
	if diff == "" {
		fmt.Println("✓ Controllers match")
		return 0
	}

	fmt.Println("✗ Controllers differ (-yaml +sqlite):")
	fmt.Println(diff)
	return 1
}

func compareSection(name string, yaml, sqlite any) int {
	diff := cmp.Diff(yaml, sqlite, cmpopts.EquateApprox(0, 1e-9))
	if diff == "" {
		fmt.Printf("✓ %s configuration matches\n", name)
		return 0
	}

	fmt.Printf("✗ %s configuration differs (-yaml +sqlite):\n%s\n", name, diff)
	return 1
}
