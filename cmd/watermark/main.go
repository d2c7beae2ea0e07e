package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ds124wfegd/WB_L3/watermark/config"
	"github.com/ds124wfegd/WB_L3/watermark/internal/appServer"
	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
	"github.com/ds124wfegd/WB_L3/watermark/internal/database"
	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/storage"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
	"github.com/ds124wfegd/WB_L3/watermark/internal/view/console"
	"github.com/ds124wfegd/WB_L3/watermark/internal/view/tui"
)

var (
	version = "1.0.0"
	appName = "watermark"

	cfgFile string

	// tui
	logFile string

	// apply
	imagePath string
	text      string
	fontSize  int
	opacity   int
	angle     int
	colorHex  string
	outDir    string

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Watermark form: web dev server, terminal UI and one-shot CLI",
	Long: `Applies a text watermark to an image through a remote watermarking server.

Examples:
  # serve the web form and forward /api/watermark to the upstream server
  watermark serve --config config/config.yaml

  # interactive terminal form
  watermark tui --image photo.png

  # one-shot request, saving the result under ./output
  watermark apply --image photo.png --text "(c) me" --opacity 30 --out ./output

  # follow the audit events the dev server publishes to kafka
  watermark events

  # inspect or remove a saved result
  watermark results show <id>
  watermark results rm <id>
`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dev server for the web form",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return appServer.NewServer(cfg)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the watermark form in the terminal",
	RunE:  runTUI,
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Watermark one image and optionally save the result",
	RunE:  runApply,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print watermark audit events from kafka",
	RunE:  runEvents,
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage results saved under output.dir",
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the parameters a saved result was made with",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

var resultsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved result and its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsRm,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config/config.yaml)")

	tuiCmd.Flags().StringVarP(&imagePath, "image", "i", "", "image to open on start")
	tuiCmd.Flags().StringVar(&logFile, "log-file", "watermark-tui.log", "log destination, the terminal belongs to the UI")

	applyCmd.Flags().StringVarP(&imagePath, "image", "i", "", "image file to watermark")
	applyCmd.Flags().StringVarP(&text, "text", "t", "", "watermark text")
	applyCmd.Flags().IntVar(&fontSize, "font-size", entity.DefaultFontSize, "font size (1-50)")
	applyCmd.Flags().IntVar(&opacity, "opacity", entity.DefaultOpacity, "opacity in percent (0-100)")
	applyCmd.Flags().IntVar(&angle, "angle", entity.DefaultAngle, "rotation in degrees (0-360)")
	applyCmd.Flags().StringVar(&colorHex, "color", entity.DefaultColor, "text color as #rrggbb")
	applyCmd.Flags().StringVarP(&outDir, "out", "o", "", "save the result under this directory (default output.dir when set)")
	applyCmd.MarkFlagRequired("image")
	applyCmd.MarkFlagRequired("text")

	resultsCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "results directory (default output.dir)")
	resultsCmd.AddCommand(resultsShowCmd, resultsRmCmd)

	rootCmd.AddCommand(serveCmd, tuiCmd, applyCmd, eventsCmd, resultsCmd)
}

func loadConfig() (*config.Config, error) {
	v, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	return config.ParseConfig(v)
}

func newController(cfg *config.Config, view controller.View, opts ...controller.Option) (*controller.Controller, error) {
	client, err := watermarkapi.NewClient(cfg.Client.BaseURL,
		watermarkapi.WithTimeout(cfg.Client.Timeout),
		watermarkapi.WithLogger(logrus.WithField("component", "watermarkapi")),
	)
	if err != nil {
		return nil, err
	}

	opts = append([]controller.Option{
		controller.WithDebounce(cfg.Form.Debounce),
		controller.WithMaxImageBytes(cfg.Form.MaxImageBytes),
		controller.WithLogger(logrus.WithField("component", "form")),
	}, opts...)
	return controller.New(client, view, opts...), nil
}

func resultRepository(dir string) database.ResultRepository {
	return database.NewResultRepository(storage.NewFileStorage(dir))
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	logrus.SetOutput(f)

	bridge := &tui.Bridge{}
	ctrl, err := newController(cfg, bridge)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(ctx, ctrl, resultRepository(cfg.Output.Dir), imagePath)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !entity.IsHexColor(colorHex) {
		return fmt.Errorf("%w: %q", entity.ErrInvalidColor, colorHex)
	}
	params := entity.Params{
		Text:     text,
		FontSize: entity.Clamp(fontSize, entity.MinFontSize, entity.MaxFontSize),
		Opacity:  entity.Clamp(opacity, entity.MinOpacity, entity.MaxOpacity),
		Color:    strings.ToLower(colorHex),
		Angle:    entity.Clamp(angle, entity.MinAngle, entity.MaxAngle),
	}

	view := console.New(cmd.OutOrStdout())
	ctrl, err := newController(cfg, view, controller.WithParams(params))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := controller.OpenFile(imagePath)
	if err != nil {
		return err
	}
	// with text already set, selecting the image submits right away
	if err := ctrl.SelectImage(ctx, file); err != nil {
		return err
	}

	if view.ResultURL() == "" {
		alerts := view.Alerts()
		if len(alerts) > 0 {
			return errors.New(alerts[len(alerts)-1])
		}
		return entity.ErrWatermarkFailed
	}

	dir := resultsDir(cfg)
	if dir == "" {
		return nil
	}

	location, err := ctrl.Download(ctx, resultRepository(dir))
	if err != nil {
		return err
	}
	colorGreen.Fprintf(cmd.OutOrStdout(), "saved: %s\n", location)
	return nil
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	reader := kafka.NewEventReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	return kafka.ConsumeEvents(ctx, reader, func(event entity.WatermarkEvent) error {
		stamp := event.CreatedAt.Format("15:04:05")
		if event.Success {
			colorGreen.Fprintf(out, "%s ok   %q -> %s (%s)\n", stamp, event.Params.Text, event.ImageURL, event.Duration)
			return nil
		}
		if event.Error != "" {
			colorRed.Fprintf(out, "%s fail %q: %s\n", stamp, event.Params.Text, event.Error)
			return nil
		}
		colorYellow.Fprintf(out, "%s fail %q\n", stamp, event.Params.Text)
		return nil
	})
}

func resultsDir(cfg *config.Config) string {
	if outDir != "" {
		return outDir
	}
	return cfg.Output.Dir
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := resultRepository(resultsDir(cfg)).FindByID(args[0])
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: %s", entity.ErrNoResult, args[0])
	}

	out := cmd.OutOrStdout()
	p := result.Params
	colorGreen.Fprintf(out, "%s\n", result.ID)
	fmt.Fprintf(out, "  source:    %s\n", result.Source)
	fmt.Fprintf(out, "  url:       %s\n", result.URL)
	fmt.Fprintf(out, "  text:      %q\n", p.Text)
	fmt.Fprintf(out, "  font size: %d  opacity: %d  angle: %d  color: %s\n", p.FontSize, p.Opacity, p.Angle, p.Color)
	fmt.Fprintf(out, "  created:   %s\n", result.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runResultsRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := resultRepository(resultsDir(cfg)).Delete(args[0]); err != nil {
		return err
	}
	colorYellow.Fprintf(cmd.OutOrStdout(), "removed: %s\n", args[0])
	return nil
}
