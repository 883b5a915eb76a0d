package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/lumipallolabs/folderdiff/internal/logging"
)

// SFTPSink uploads over SFTP
type SFTPSink struct {
	ssh    *ssh.Client
	client *sftp.Client
}

// DialSFTP connects over SSH and starts an SFTP session
func DialSFTP(ctx context.Context, ep Endpoint) (*SFTPSink, error) {
	config, err := sshConfig(ep)
	if err != nil {
		return nil, err
	}

	addr := ep.addr("22")
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("start sftp session: %w", err)
	}
	logging.Remote.WithField("host", ep.Host).Debug("SFTP connected")

	return &SFTPSink{ssh: sshClient, client: client}, nil
}

func sshConfig(ep Endpoint) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if ep.KeyFile != "" {
		signer, err := loadKey(ep.KeyFile, ep.Password)
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if ep.Password != "" {
		auth = append(auth, ssh.Password(ep.Password))
	}
	if len(auth) == 0 {
		return nil, errors.New("sftp needs a password or a key file")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via InsecureHostKey
	if !ep.InsecureHostKey {
		knownHostsPath, err := homedir.Expand("~/.ssh/known_hosts")
		if err != nil {
			return nil, fmt.Errorf("expand known_hosts path: %w", err)
		}
		hostKeyCallback, err = knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", knownHostsPath, err)
		}
	}

	return &ssh.ClientConfig{
		User:            ep.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         ftpTimeout,
	}, nil
}

func loadKey(path, passphrase string) (ssh.Signer, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand key path: %w", err)
	}
	keyBytes, err := os.ReadFile(filepath.Clean(expanded))
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", expanded, err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(passphrase))
	}
	if err != nil {
		return nil, fmt.Errorf("parse key %s: %w", expanded, err)
	}
	return signer, nil
}

// Exists implements Sink
func (s *SFTPSink) Exists(dir string) (bool, error) {
	info, err := s.client.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// MakeDir implements Sink
func (s *SFTPSink) MakeDir(dir string) error {
	return s.client.Mkdir(dir)
}

// Upload implements Sink
func (s *SFTPSink) Upload(path string, r io.Reader) error {
	f, err := s.client.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close implements Sink
func (s *SFTPSink) Close() error {
	err := s.client.Close()
	if sshErr := s.ssh.Close(); err == nil {
		err = sshErr
	}
	return err
}

var _ Sink = (*SFTPSink)(nil)
