// Command bpetrain trains a byte-pair vocabulary on one or more corpus files
// and writes it as JSON. Plain text files are added as single documents
// (or split on blank lines with -split); .parquet files contribute one
// document per row of their "text" column.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"k8s.io/klog/v2"

	"github.com/tokenlab/go-bpe/corpus"
	"github.com/tokenlab/go-bpe/tokenizer"
	"github.com/tokenlab/go-bpe/train"
	"github.com/tokenlab/go-bpe/vocab"
)

var (
	flagVocabSize = flag.Int("vocab-size", 5500, "target vocabulary size, must be > 256")
	flagOut       = flag.String("out", "vocabulary.json", "path to write the trained vocabulary")
	flagSplit     = flag.Bool("split", false, "split text files into documents on blank lines")
	flagSample    = flag.String("sample", "", "optional held-out file to measure the compression ratio on")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bpetrain [flags] corpus-file...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		klog.Exitf("bpetrain: %+v", err)
	}
}

func run(paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := corpus.New()
	for _, path := range paths {
		if err := addPath(c, path); err != nil {
			return err
		}
	}
	klog.V(1).Infof("Loaded %d documents, %d bytes", c.Len(), c.TotalBytes())

	v, report, err := train.Train(ctx, c, *flagVocabSize)
	if err != nil && v == nil {
		return err
	}
	if err != nil {
		klog.Warningf("Training stopped early: %v", err)
	}
	if err := v.Save(*flagOut); err != nil {
		return err
	}

	sampleRatio := 0.0
	if *flagSample != "" {
		data, err := os.ReadFile(*flagSample)
		if err != nil {
			return err
		}
		sampleRatio = tokenizer.New(v).CompressionRatio(data)
	}

	fmt.Println(renderReport(report, sampleRatio))
	return nil
}

func addPath(c *corpus.Corpus, path string) error {
	switch {
	case filepath.Ext(path) == ".parquet":
		return c.AddParquetFile(path)
	case *flagSplit:
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s, err := corpus.NewSplitter(corpus.BlankLinePattern)
		if err != nil {
			return err
		}
		return s.Split(c, string(data))
	default:
		return c.AddFile(path)
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderReport(r *train.Report, sampleRatio float64) string {
	row := func(key, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(key), valueStyle.Render(value))
	}
	lines := []string{
		titleStyle.Render("BPE training run " + r.RunID),
		row("Vocabulary size", fmt.Sprintf("%d (%d requested)", r.VocabSize, r.RequestedVocabSize)),
		row("Learned merges", fmt.Sprintf("%d", r.MergeCount)),
		row("Base tokens", fmt.Sprintf("%d", vocab.BaseSize)),
		row("Corpus bytes", fmt.Sprintf("%d", r.OriginalBytes)),
		row("Corpus tokens", fmt.Sprintf("%d", r.EncodedTokens)),
		row("Compression ratio", fmt.Sprintf("%.2fx", r.CompressionRatio())),
	}
	if r.Shortfall() > 0 {
		lines = append(lines, row("Shortfall", fmt.Sprintf("%d tokens", r.Shortfall())))
	}
	if sampleRatio > 0 {
		lines = append(lines, row("Sample ratio", fmt.Sprintf("%.2fx", sampleRatio)))
	}
	if ls := r.TokenLengthStats(); ls.Max > 0 {
		lines = append(lines, row("Token bytes",
			fmt.Sprintf("mean %.1f, median %.0f, p90 %.0f, max %.0f", ls.Mean, ls.Median, ls.P90, ls.Max)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
