package config

import (
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dropboxHostDB     = ".dropbox/host.db"
	googleDriveConfig = "Library/Application Support/Google/Drive/sync_config.db"

	googleDriveRootQuery = "SELECT data_value FROM data WHERE entry_key = 'local_sync_root_path';"
)

// DropboxFolder returns the Dropbox folder recorded in ~/.dropbox/host.db.
// The second field of that file is the base64-encoded folder path.
func DropboxFolder(home string) (string, error) {
	hostDB := filepath.Join(home, dropboxHostDB)
	data, err := os.ReadFile(hostDB)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrapf(err, "unable to find your Dropbox install"),
			"set storage.engine to file_system and storage.path to your synced folder")
	}

	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return "", errors.Newf("unexpected format in %s", hostDB)
	}
	folder, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		return "", errors.Wrapf(err, "decoding Dropbox folder from %s", hostDB)
	}
	return string(folder), nil
}

// GoogleDriveFolder returns the local sync root recorded in the Google
// Drive sqlite configuration.
func GoogleDriveFolder(home string) (string, error) {
	dbPath := filepath.Join(home, googleDriveConfig)
	if _, err := os.Stat(dbPath); err != nil {
		return "", errors.WithHint(
			errors.Wrapf(err, "unable to find your Google Drive install"),
			"set storage.engine to file_system and storage.path to your synced folder")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", dbPath)
	}
	defer func() { _ = db.Close() }()

	var folder sql.NullString
	if err := db.QueryRow(googleDriveRootQuery).Scan(&folder); err != nil {
		return "", errors.Wrapf(err, "reading sync root from %s", dbPath)
	}
	if !folder.Valid || folder.String == "" {
		return "", errors.Newf("unable to find your Google Drive install: empty sync root in %s", dbPath)
	}
	return folder.String, nil
}
