package midifile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-pianoroll/song"
)

const backupStamp = "2006-01-02_15-04-05"

// BackupInfo describes one timestamped backup.
type BackupInfo struct {
	Path      string
	Timestamp time.Time
}

// BackupDir returns the backup folder for a document named after its file,
// e.g. ~/.config/go-pianoroll/backups/song for song.mid.
func BackupDir(file string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("find home directory"))
	}
	return filepath.Join(home, ".config", "go-pianoroll", "backups", backupName(file)), nil
}

func backupName(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "untitled"
	}
	return base
}

// WriteBackup saves a timestamped copy of doc for file and returns its path.
func WriteBackup(file string, doc *song.Document) (string, error) {
	return writeBackupAt(file, doc, time.Now())
}

func writeBackupAt(file string, doc *song.Document, now time.Time) (string, error) {
	dir, err := BackupDir(file)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("create backup dir", "Could not create the backup folder."))
	}
	path := filepath.Join(dir, now.Format(backupStamp)+".mid")
	if err := Save(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// ListBackups returns the backups for file, newest first.
func ListBackups(file string) ([]BackupInfo, error) {
	dir, err := BackupDir(file)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fault.Wrap(err, fmsg.With("read backup dir"))
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".mid") {
			continue
		}
		// Timestamp is the whole base name: 2006-01-02_15-04-05.mid
		ts, err := time.ParseInLocation(backupStamp, strings.TrimSuffix(name, ".mid"), time.Local)
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Path: filepath.Join(dir, name), Timestamp: ts})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}
