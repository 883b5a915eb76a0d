package remote

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/lumipallolabs/folderdiff/internal/logging"
)

const ftpTimeout = 30 * time.Second

// FTPSink uploads over FTP
type FTPSink struct {
	conn *ftp.ServerConn
	home string
}

// DialFTP connects and logs in. An empty user logs in anonymously.
func DialFTP(ctx context.Context, ep Endpoint) (*FTPSink, error) {
	conn, err := ftp.Dial(ep.addr("21"),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(ftpTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", ep.Host, err)
	}

	user, password := ep.User, ep.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login to %s as %s: %w", ep.Host, user, err)
	}

	home, err := conn.CurrentDir()
	if err != nil {
		home = "/"
	}
	logging.Remote.WithField("host", ep.Host).Debug("FTP connected")

	return &FTPSink{conn: conn, home: home}, nil
}

// Exists implements Sink by trying to change into dir
func (s *FTPSink) Exists(dir string) (bool, error) {
	if err := s.conn.ChangeDir(dir); err != nil {
		return false, nil
	}
	if err := s.conn.ChangeDir(s.home); err != nil {
		return true, fmt.Errorf("return to %s: %w", s.home, err)
	}
	return true, nil
}

// MakeDir implements Sink
func (s *FTPSink) MakeDir(dir string) error {
	return s.conn.MakeDir(dir)
}

// Upload implements Sink
func (s *FTPSink) Upload(path string, r io.Reader) error {
	return s.conn.Stor(path, r)
}

// Close implements Sink
func (s *FTPSink) Close() error {
	return s.conn.Quit()
}

var _ Sink = (*FTPSink)(nil)
