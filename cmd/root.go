package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/watermark/internal/prompt"
	"github.com/kiesman99/watermark/internal/watermark"
	"github.com/kiesman99/watermark/pkg/blend"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "watermark",
	Short: "Blend a watermark image onto a base image",
	Long: `watermark blends a watermark image onto a base image with a configurable
transparency percentage. Watermark pixels can be exempted from blending through
the watermark's alpha channel or a transparency color, and the watermark is
either repeated as a grid or placed once at a fixed position.

Without flags, watermark asks for every value interactively.

Examples:
  # Interactive session
  watermark

  # Tile a logo across a photo at 30% opacity
  watermark --base photo.jpg --watermark logo.png --weight 30 -o out.png

  # Single copy at (40,20), magenta treated as transparent
  watermark -b photo.jpg -m logo.jpg -p 50 --key "255 0 255" --placement single --position 40,20 -o out.jpg

  # Use the watermark's alpha channel
  watermark -b photo.png -m logo.png -p 70 --alpha -o out.png

  # Start HTTP server
  watermark serve --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWatermark,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.watermark.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("quality", blend.DefaultJPEGQuality, "JPEG output quality (1-100)")
	rootCmd.PersistentFlags().Int("workers", 1, "goroutines used for compositing")

	// Input options
	rootCmd.Flags().StringP("base", "b", "", "base image file")
	rootCmd.Flags().StringP("watermark", "m", "", "watermark image file")

	// Blend options
	rootCmd.Flags().StringP("weight", "p", "", "watermark transparency percentage (0-100)")
	rootCmd.Flags().Bool("alpha", false, "use the watermark's alpha channel")
	rootCmd.Flags().String("key", "", "transparency color as 'R G B', '#rrggbb' or 'auto'")

	// Placement options
	rootCmd.Flags().String("placement", "grid", "placement method (single|grid)")
	rootCmd.Flags().String("position", "", "watermark position as 'x,y' (single placement)")

	// Output options
	rootCmd.Flags().StringP("output", "o", "", "output file (png or jpg)")

	for _, name := range []string{"log-level", "quality", "workers"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	for _, name := range []string{"base", "watermark", "weight", "alpha", "key", "placement", "position", "output"} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".watermark" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".watermark")
	}

	viper.SetEnvPrefix("WATERMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger := newLogger(viper.GetString("log-level"))
		logger.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

func newWatermarker() *watermark.Watermarker {
	logger := newLogger(viper.GetString("log-level"))
	return watermark.NewWatermarker(watermark.Options{
		JPEGQuality: viper.GetInt("quality"),
		Workers:     viper.GetInt("workers"),
		Logger:      &logger,
	})
}

func runWatermark(cmd *cobra.Command, args []string) error {
	var (
		job *watermark.Job
		err error
	)

	// No inputs configured: fall back to the interactive session.
	if viper.GetString("base") == "" && viper.GetString("watermark") == "" {
		job, err = prompt.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	} else {
		job, err = jobFromFlags()
	}
	if err != nil {
		return err
	}

	if err := newWatermarker().Apply(job); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "The watermarked image %s has been created.\n", job.Output)
	return nil
}

func jobFromFlags() (*watermark.Job, error) {
	baseFile := viper.GetString("base")
	wmFile := viper.GetString("watermark")
	output := viper.GetString("output")

	if baseFile == "" {
		return nil, fmt.Errorf("base image is required (use --base)")
	}
	if wmFile == "" {
		return nil, fmt.Errorf("watermark image is required (use --watermark)")
	}
	if output == "" {
		return nil, fmt.Errorf("output file is required (use --output)")
	}

	job := &watermark.Job{Output: output}

	var err error
	if job.Base, err = blend.Open(baseFile); err != nil {
		return nil, err
	}
	if err := blend.ValidateBase(job.Base); err != nil {
		return nil, err
	}
	if job.Watermark, err = blend.Open(wmFile); err != nil {
		return nil, err
	}
	if err := blend.ValidateWatermark(job.Watermark); err != nil {
		return nil, err
	}
	if err := blend.CheckFits(job.Base, job.Watermark); err != nil {
		return nil, err
	}

	if job.Transparency, err = transparencyFromFlags(job.Watermark); err != nil {
		return nil, err
	}

	if job.Weight, err = blend.ParseWeight(viper.GetString("weight")); err != nil {
		return nil, err
	}

	mode, err := blend.ParseMethod(viper.GetString("placement"))
	if err != nil {
		return nil, err
	}
	job.Placement = blend.Tiled()
	if mode == blend.PlacementFixed {
		if job.Placement, err = blend.ParsePosition(viper.GetString("position"), job.Base, job.Watermark); err != nil {
			return nil, err
		}
	}

	return job, nil
}

func transparencyFromFlags(wm *blend.Grid) (blend.Transparency, error) {
	alpha := viper.GetBool("alpha")
	key := viper.GetString("key")

	switch {
	case alpha && key != "":
		return blend.Transparency{}, fmt.Errorf("%w: --alpha and --key are mutually exclusive", blend.ErrInvalidParameter)
	case alpha:
		if !wm.Translucent {
			return blend.Transparency{}, fmt.Errorf("%w: the watermark has no alpha channel", blend.ErrInvalidParameter)
		}
		return blend.AlphaTransparency(), nil
	case key != "":
		c, err := blend.ParseKeyColor(key, wm)
		if err != nil {
			return blend.Transparency{}, err
		}
		return blend.KeyTransparency(c), nil
	}
	return blend.NoTransparency(), nil
}
