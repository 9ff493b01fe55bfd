package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecerdem/stokbot/internal/config"
	"github.com/ecerdem/stokbot/internal/storage"
)

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load inventory records into the local store",
	Long: `Load inventory records from a JSON array into the local store.

Both the native field names (stokKodu, malzemeTanimi, olcuBirimi, kategori)
and the raw export column headers ("Stok Kodu", "Malzeme Tanımı 1",
"Birincil ölçü birimi", "Kategori") are accepted. Existing records with the
same code are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening inventory file: %w", err)
		}
		defer f.Close()

		items, err := storage.DecodeItems(f)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			printWarning("no records found in %s", args[0])
			return nil
		}

		printStep("Importing %d records...", len(items))

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := store.InsertItems(cmd.Context(), items); err != nil {
			return err
		}

		printSuccess("Imported %d records", len(items))
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		printStatus("Port", "%d", cfg.Server.Port)
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		printStatus("Model", "%s", cfg.OpenAI.Model)
		printStatus("Max tokens", "%d", cfg.OpenAI.MaxTokens)
		printStatus("Temperature", "%.1f", cfg.OpenAI.Temperature)
		printStatus("Max sessions", "%d", cfg.Session.MaxSessions)
		printStatus("Session TTL", "%s", cfg.Session.TTL)
		printStatus("Snapshot stale after", "%s", cfg.Session.StaleAfter)
		printStatus("Log level", "%s", cfg.Log.Level)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
