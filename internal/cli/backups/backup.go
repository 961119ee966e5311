package backups

import (
	"fmt"
	"path/filepath"

	"github.com/evrwell/habitstore/internal/backup"
	"github.com/evrwell/habitstore/internal/cli"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	path, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	fmt.Printf("Created backup: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%d backup(s) in %s", len(backups), mgr.BackupDir())))
	for _, b := range backups {
		fmt.Printf("  %s  %s  %s\n",
			filepath.Base(b.Path),
			b.Timestamp.Format("2006-01-02 15:04"),
			cli.MutedStyle.Render(fmt.Sprintf("%.1f KB", float64(b.Size)/1024)))
	}

	return nil
}

type BackupRestoreCmd struct {
	Name string `arg:"" help:"Backup filename to restore."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	// Close the live database before overwriting the file under it.
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database before restore: %w", err)
	}

	backupPath := filepath.Join(mgr.BackupDir(), c.Name)
	if err := mgr.RestoreBackup(backupPath); err != nil {
		return err
	}

	fmt.Printf("Restored database from %s\n", c.Name)
	return nil
}
