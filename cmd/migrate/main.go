package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"tourbook/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"ariga.io/atlas/sql/migrate"
	"github.com/kelseyhightower/envconfig"
)

// migrate は migrations/ 配下のスキーマを atlas CLI 経由で適用する。
// migrations/atlas.sum は `atlas migrate hash --dir file://migrations` で更新すること。
func main() {
	dir := flag.String("dir", "file://migrations", "migration directory URL")
	atlasBin := flag.String("atlas", "atlas", "path to the atlas binary")
	dryRun := flag.Bool("dry-run", false, "print pending migrations without applying them")
	statusOnly := flag.Bool("status", false, "show migration status and exit")
	flag.Parse()

	var dbCfg config.DBConfig
	if err := envconfig.Process("", &dbCfg); err != nil {
		slog.Error("DB設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	if err := verifyChecksum(*dir); err != nil {
		slog.Error("migrations/atlas.sum がマイグレーションと一致しません", "error", err)
		os.Exit(1)
	}

	client, err := atlasexec.NewClient(".", *atlasBin)
	if err != nil {
		slog.Error("atlas クライアントの初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *statusOnly {
		status, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
			DirURL: *dir,
			URL:    dbCfg.BuildDSN(),
		})
		if err != nil {
			slog.Error("マイグレーション状態の取得に失敗しました", "error", err)
			os.Exit(1)
		}
		slog.Info("マイグレーション状態",
			"current", status.Current,
			"next", status.Next,
			"pending", len(status.Pending),
		)
		return
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		DirURL: *dir,
		URL:    dbCfg.BuildDSN(),
		DryRun: *dryRun,
	})
	if err != nil {
		slog.Error("マイグレーションの適用に失敗しました", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ マイグレーションを適用しました",
		"current", res.Current,
		"target", res.Target,
		"applied", len(res.Applied),
		"dry_run", *dryRun,
	)
}

// verifyChecksum は atlas CLI を呼ぶ前にローカルの atlas.sum を検証する。file:// 以外は CLI に任せる。
func verifyChecksum(dirURL string) error {
	path, ok := strings.CutPrefix(dirURL, "file://")
	if !ok {
		return nil
	}
	dir, err := migrate.NewLocalDir(path)
	if err != nil {
		return err
	}
	return migrate.Validate(dir)
}
