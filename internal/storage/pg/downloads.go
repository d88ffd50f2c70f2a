package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DownloadStore resolves package files and records download activity.
type DownloadStore struct {
	pool *ConnectionPool
}

func NewDownloadStore(pool *ConnectionPool) *DownloadStore {
	return &DownloadStore{pool: pool}
}

// PackageNameByHash maps a file hash to the package identifier of the app it
// belongs to.
func (s *DownloadStore) PackageNameByHash(ctx context.Context, hash string) (string, error) {
	var pkg string
	err := s.pool.GetConn().QueryRow(ctx, `
		SELECT ma.app_id
		  FROM model_download md
		  JOIN model_app ma ON md.app_id = ma.id
		 WHERE md.hash = $1`, hash).Scan(&pkg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve package name: %w", err)
	}
	return pkg, nil
}

// DownloadLog is one audit record of a granted download URL.
type DownloadLog struct {
	Email     string
	Hash      string
	UserAgent string
	IPAddress string
}

// LogDownload appends an audit row for a granted download.
func (s *DownloadStore) LogDownload(ctx context.Context, l *DownloadLog) error {
	_, err := s.pool.GetConn().Exec(ctx, `
		INSERT INTO download_log (email, hash, user_agent, ip_address)
		VALUES ($1, $2, $3, $4)`,
		l.Email, l.Hash, l.UserAgent, l.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to insert download log: %w", err)
	}
	return nil
}
