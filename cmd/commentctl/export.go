package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comment-history-api/internal/dto"
	"comment-history-api/internal/export"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/service"
)

var (
	exportUser      string
	exportRequester string
	exportFormat    string
	exportFrom      string
	exportTo        string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Stream a user's comment history to a file or stdout",
	Long: `Export writes every history entry authored by --user within [--from, --to]
in text, json or xml. Bounds take RFC3339 timestamps or "2024-01-31" dates in the
display timezone. A download record is stored exactly as for the HTTP export.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads <user-id>",
	Short: "List download records whose exported author is the given user",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownloads,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "Author whose history is exported (uuid)")
	exportCmd.Flags().StringVar(&exportRequester, "requester", "", "User recorded as requester (defaults to --user)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (text, json, xml)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Inclusive lower bound")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Inclusive upper bound")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to stdout)")
	_ = exportCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(exportCmd, downloadsCmd)
}

func buildExportRequest() (service.ExportRequest, error) {
	var req service.ExportRequest

	author, err := uuid.Parse(exportUser)
	if err != nil {
		return req, fmt.Errorf("invalid --user: %w", err)
	}
	requester := author
	if exportRequester != "" {
		if requester, err = uuid.Parse(exportRequester); err != nil {
			return req, fmt.Errorf("invalid --requester: %w", err)
		}
	}
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return req, err
	}

	req = service.ExportRequest{
		RequesterID:    requester,
		TargetAuthorID: author,
		Format:         format,
		Meta:           map[string]interface{}{"client": "commentctl"},
	}
	if exportFrom != "" {
		if req.From, err = dto.ParseDateBound(exportFrom); err != nil {
			return req, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if exportTo != "" {
		if req.To, err = dto.ParseDateBound(exportTo); err != nil {
			return req, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return req, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	req, err := buildExportRequest()
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := newContext()
	defer cancel()

	loc := e.location()
	targets := repository.NewTargetRepository(e.db)
	downloads := service.NewDownloadService(repository.NewDownloadRepository(e.db), targets, service.SystemClock, loc, e.logger)
	history := service.NewHistoryService(repository.NewHistoryRepository(e.db), targets, downloads, service.SystemClock, loc, nil, e.logger)

	result, err := history.Export(ctx, req)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			_ = result.Encoder.Close()
			return err
		}
		defer f.Close()
		w = f
	}

	written, err := result.Encoder.Drain(ctx, w)
	if err != nil {
		return err
	}
	e.logger.Info("Export written",
		zap.String("file_name", result.FileName),
		zap.Int("entries", result.Encoder.Entries()),
		zap.Int64("bytes", written),
	)
	return nil
}

func runDownloads(cmd *cobra.Command, args []string) error {
	author, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := newContext()
	defer cancel()

	targets := repository.NewTargetRepository(e.db)
	svc := service.NewDownloadService(repository.NewDownloadRepository(e.db), targets, service.SystemClock, e.location(), e.logger)
	views, err := svc.ListDownloads(ctx, author)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
