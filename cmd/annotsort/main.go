// Command annotsort is a fast chr/pos/feature GTF/GFF3 sorter.
//
// Usage:
//
//	annotsort -i unsorted.gtf -o sorted.gtf [-t threads]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"annotsort"
)

var (
	inputPath  string
	outputPath string
	threads    int
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "annotsort",
	Short:         "An optimized chr/pos/feature GTF/GFF3 sorter",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to unsorted GTF/GFF3 file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "path to output sorted file")
	rootCmd.Flags().IntVarP(&threads, "threads", "t", runtime.NumCPU(), "number of threads")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress banner and progress output")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := validateArgs(); err != nil {
		return err
	}
	if !quiet {
		banner()
	}

	start := time.Now()
	sum, err := annotsort.SortAnnotations(inputPath, outputPath, threads)
	if err != nil {
		return err
	}

	if !quiet {
		slog.Info("job finished",
			"threads", sum.Threads,
			"input_mmaped", sum.InputMmaped,
			"output_mmaped", sum.OutputMmaped,
			"parsing_secs", fmt.Sprintf("%.3f", sum.ParsingSecs),
			"indexing_secs", fmt.Sprintf("%.3f", sum.IndexingSecs),
			"writing_secs", fmt.Sprintf("%.3f", sum.WritingSecs),
			"output_bytes", sum.OutputBytes,
		)
		slog.Info("resources",
			"elapsed_secs", fmt.Sprintf("%.3f", time.Since(start).Seconds()),
			"mem_delta_mb", fmt.Sprintf("%.1f", sum.EndMemMB-sum.StartMemMB),
		)
		fmt.Fprintf(os.Stderr, "%s annotation file sorted successfully\n",
			color.New(color.FgGreen, color.Bold).Sprint("Success:"))
	}
	return nil
}

func validateArgs() error {
	fi, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input file %q does not exist", inputPath)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("input file %q is empty", inputPath)
	}
	if !recognizedExt(inputPath) {
		return fmt.Errorf("input file %q is not a GTF or GFF3 file", inputPath)
	}
	if !recognizedExt(outputPath) {
		return fmt.Errorf("output file %q is not a GTF or GFF3 file", outputPath)
	}
	if threads == 0 {
		return fmt.Errorf("number of threads must be greater than 0")
	}
	if threads < 0 || threads > runtime.NumCPU() {
		return fmt.Errorf("number of threads must be between 1 and %d", runtime.NumCPU())
	}
	return nil
}

func recognizedExt(path string) bool {
	path = strings.TrimSuffix(path, ".gz")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gtf", ".gff", ".gff3":
		return true
	}
	return false
}

func banner() {
	bold := color.New(color.FgHiMagenta, color.Bold)
	bold.Fprintln(os.Stderr, "##### ANNOTSORT #####")
	fmt.Fprintln(os.Stderr, "A rapid chr/pos/feature GTF/GFF3 sorter.")
}
