package commands

import (
	"fmt"
	"sort"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// Shared output helpers for the CLI commands

func sortedPartitionKeys(partitions map[contracts.BreweryType][]contracts.CleanedBrewery) []contracts.BreweryType {
	keys := make([]contracts.BreweryType, 0, len(partitions))
	for t := range partitions {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func stageNames(stages []contracts.Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.String()
	}
	return names
}

func sortedMetricNames(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printQualityReport(report *contracts.QualityReport) {
	fmt.Printf("\nRecords:    %d\n", report.RecordCount)
	fmt.Printf("Passed:     %v\n", report.Passed)
	fmt.Printf("Violations: %d (hard %d, warning %d)\n",
		len(report.Violations), len(report.HardViolations()), report.WarningCount())
	for _, v := range report.Violations {
		fmt.Printf("  [%s] %s\n", v.Severity, v.String())
	}
}
