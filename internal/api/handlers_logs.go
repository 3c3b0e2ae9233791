package api

import (
	"archive/zip"
	"bufio"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mescon/Composelab/internal/logger"
)

// LogsResponse is a page of log entries, newest first.
type LogsResponse struct {
	Data       []logger.LogEntry  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

func (s *RESTServer) handleDownloadLogs(c *gin.Context) {
	logDir := logger.GetLogDir()
	if logDir == "" {
		abortWithError(c, http.StatusNotFound, errMsgNoLogFile, nil)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=composelab_logs.zip")
	c.Header("Content-Type", "application/zip")

	zipWriter := zip.NewWriter(c.Writer)
	defer zipWriter.Close()

	err := filepath.Walk(logDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		// Use .txt extension for Windows compatibility
		baseName := filepath.Base(path)
		if strings.HasSuffix(baseName, ".log") {
			baseName = strings.TrimSuffix(baseName, ".log") + ".txt"
		}
		header.Name = baseName
		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})

	if err != nil {
		logger.Errorf("Failed to zip logs: %v", err)
	}
}

func (s *RESTServer) handleRecentLogs(c *gin.Context) {
	p := ParsePagination(c, DefaultPaginationConfig())

	entries, err := readLogEntries(logger.GetLogDir())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}

	// Newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	c.JSON(http.StatusOK, LogsResponse{
		Data:       paginate(entries, p),
		Pagination: NewPaginationResponse(p, len(entries)),
	})
}

// readLogEntries parses the current log file. A missing directory or file
// yields no entries.
func readLogEntries(logDir string) ([]logger.LogEntry, error) {
	if logDir == "" {
		return nil, nil
	}

	file, err := os.Open(filepath.Join(logDir, logger.LogFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	// Lines have no length limit; a long message must not hide the rest of the file.
	var entries []logger.LogEntry
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if entry, ok := parseLogLine(strings.TrimRight(line, "\r\n")); ok {
			entries = append(entries, entry)
		}
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
	}
}

// parseLogLine splits "timestamp [LEVEL] message", e.g.
// 2026-10-17T19:00:00Z [INFO] Server started
func parseLogLine(line string) (logger.LogEntry, bool) {
	if strings.TrimSpace(line) == "" {
		return logger.LogEntry{}, false
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return logger.LogEntry{}, false
	}
	return logger.LogEntry{
		Timestamp: parts[0],
		Level:     logger.LogLevel(strings.Trim(parts[1], "[]")),
		Message:   parts[2],
	}, true
}
