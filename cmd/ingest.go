package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docchat/src/core/document"
	"docchat/src/fsutil"
	"docchat/src/log"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest every supported document in a directory",
	Long: `The ingest command processes all supported files (.txt, .pdf, .doc, .docx)
in a directory into the vector index and prints the asset id of each.`,
	Run: RunIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("dir", "d", "", "Directory of documents to ingest")
	ingestCmd.MarkFlagRequired("dir")
}

func RunIngest(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	dir, _ := cmd.Flags().GetString("dir")

	docService, _, err := buildServices(ctx)
	if err != nil {
		log.Error(err, "Failed to initialize services")
		return
	}

	files, err := fsutil.NewLocalFileStore().ListFiles(dir)
	if err != nil {
		log.Error(err, "Failed to list directory", "dir", dir)
		return
	}

	bar := progressbar.Default(int64(len(files)), "ingesting")
	for _, name := range files {
		path := filepath.Join(dir, name)

		assetID, err := docService.Process(ctx, path)
		switch {
		case errors.Is(err, document.ErrUnsupportedFileType):
			log.Info("skipping unsupported file", "file", name)
		case err != nil:
			log.Error(err, "Failed to ingest file", "file", name)
		default:
			fmt.Printf("%s -> %s\n", name, assetID)
		}

		bar.Add(1)
	}
}
