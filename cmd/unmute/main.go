// Command unmute runs the passthrough demo: it streams a source through the
// routing engine and toggles between routing and silence on every line read
// from stdin, standing in for the START/STOP button of a GUI frontend.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/unmute"
	"github.com/opd-ai/unmute/dispatch"
	"github.com/opd-ai/unmute/sink"
	"github.com/opd-ai/unmute/source"
)

var (
	flagSampleRate int
	flagBlockSize  int
	flagChannels   int
	flagToneFreq   float64
	flagOpusFile   string
	flagHeadless   bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Toggleable real-time audio passthrough demo",
	Long: `unmute streams a test tone (or a decoded Ogg Opus file) through the
passthrough engine. The engine starts silenced; press Enter to toggle
between "routing active" and "silenced". Ctrl-C exits.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVar(&flagSampleRate, "sample-rate", 48000, "stream sample rate in Hz")
	rootCmd.Flags().IntVar(&flagBlockSize, "block-size", 480, "samples per device callback")
	rootCmd.Flags().IntVar(&flagChannels, "channels", 2, "input/output channel count")
	rootCmd.Flags().Float64Var(&flagToneFreq, "tone", 440, "test tone frequency in Hz")
	rootCmd.Flags().StringVar(&flagOpusFile, "opus", "", "Ogg Opus file to route instead of the tone")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "discard output instead of playing it")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	src, err := buildSource()
	if err != nil {
		return err
	}

	snk, err := buildSink()
	if err != nil {
		return err
	}
	defer snk.Close()

	options := unmute.NewOptions()
	options.SampleRate = flagSampleRate
	options.BlockSize = flagBlockSize
	options.InputChannels = flagChannels
	options.OutputChannels = flagChannels
	options.Source = src
	options.Sink = snk

	um, err := unmute.New(options)
	if err != nil {
		return err
	}
	defer um.Kill()

	if err := snk.Start(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	if err := um.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}

	fmt.Println("Stream running. Press Enter to toggle routing, Ctrl-C to quit.")
	fmt.Printf("State: %s\n", um.StatusLabel())

	toggles := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			toggles <- struct{}{}
		}
		close(toggles)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-interrupt:
			fmt.Println("\nShutting down.")
			um.Stop()
			return nil
		case _, ok := <-toggles:
			if !ok {
				um.Stop()
				return nil
			}
			fmt.Printf("State: %s\n", um.Toggle())
		}
	}
}

// buildSource picks the input: an Opus file when given, a test tone
// otherwise.
func buildSource() (dispatch.BlockSource, error) {
	if flagOpusFile != "" {
		f, err := os.Open(flagOpusFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open opus file: %w", err)
		}
		return source.NewOpusFile(f)
	}
	return source.NewTone(flagToneFreq, flagSampleRate, 0.5)
}

// lifecycleSink is the sink contract the demo needs beyond block delivery.
type lifecycleSink interface {
	dispatch.BlockSink
	Start() error
	Close() error
}

// buildSink picks the output: system playback, or a discard sink when
// running headless.
func buildSink() (lifecycleSink, error) {
	if flagHeadless {
		return sink.NewNull(), nil
	}
	playChannels := flagChannels
	if playChannels > 2 {
		playChannels = 2
	}
	return sink.NewOto(flagSampleRate, playChannels, flagBlockSize)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Fatal("Command failed")
	}
}
