package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/datnt-sec/webcomply/internal/shared/constants"
)

var cfgFile string
var logger *zap.SugaredLogger
var scansDir string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "webcomply",
	Short: "Web host security compliance scanner (scan only hosts you are authorized to test)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".webcomply")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()
		scansDir = viper.GetString("scans_dir")
		if scansDir == "" {
			scansDir = "./scans"
		}

		if err := os.MkdirAll(scansDir, constants.DefaultDirPerm); err != nil {
			return fmt.Errorf("failed to create scans directory: %s", err.Error())
		}

		// init logger
		var l *zap.Logger
		if verbose {
			l, _ = zap.NewDevelopment()
		} else {
			l, _ = zap.NewProduction()
		}
		logger = l.Sugar()

		// Make scansDir absolute for clarity in logs
		if abs, err := filepath.Abs(scansDir); err == nil {
			scansDir = abs
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.webcomply.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}
