// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CrawX/go-imap-mailsync/config"
	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/imapconnection"
	"github.com/CrawX/go-imap-mailsync/log"
	"github.com/CrawX/go-imap-mailsync/mailcache"
	"github.com/CrawX/go-imap-mailsync/mailsync"
	"github.com/CrawX/go-imap-mailsync/persistence"
	"github.com/CrawX/go-imap-mailsync/registry"

	"github.com/sirupsen/logrus"
)

func main() {
	log.InitLogging("debug")
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig("config.toml")
	if err != nil {
		logger.WithField("error", err).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	p, err := persistence.NewPersistence(conf.Driver, conf.Database)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not open cache database")
	}
	defer p.Close()

	creds, err := conf.Credentials()
	if err != nil {
		logger.WithField("error", err).Fatal("Invalid credentials in config")
	}
	conf.Password = ""

	sessions := registry.NewRegistry(conf.SessionTTL.Duration, conf.MaxSessions)
	defer sessions.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{"server": creds.Address(), "user": creds.Username, "security": creds.Security}).Info("Connecting")
	id, entry, err := sessions.Open(ctx, creds, newFactory(conf, p))
	if err != nil {
		if domain.IsAuthError(err) {
			logger.WithField("error", err).Fatal("Login rejected, check User and Password")
		}
		logger.WithField("error", err).Fatal("Could not connect")
	}
	mailbox := entry.Mailbox

	folders, err := mailbox.Folders(ctx)
	if err != nil {
		logger.WithField("error", err).Warn("Could not list folders")
	}
	logger.WithFields(logrus.Fields{"session": id, "folders": len(folders)}).Info("Logged in")

	events := mailbox.Events()
	go logEvents(logger, events)

	for _, folder := range conf.Folders {
		result, err := mailbox.Sync(ctx, folder)
		if err != nil {
			logger.WithFields(logrus.Fields{"folder": folder, "error": err}).Warn("Initial sync failed")
			continue
		}
		logger.WithFields(logrus.Fields{"folder": folder, "fetched": result.Fetched, "hasmore": result.HasMore}).Info("Initial sync done")
	}

	mailbox.StartSync(ctx, conf.Folders)
	logger.WithFields(logrus.Fields{"folders": conf.Folders, "interval": conf.SyncInterval.Duration}).Info("Syncing, press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("Shutting down")

	stats, err := mailbox.Stats(context.Background())
	if err == nil {
		logger.WithFields(logrus.Fields{"messages": stats.TotalMessages, "bodies": stats.TotalBodies, "folders": stats.TotalFolders}).Info("Cache statistics")
	}
	sessions.Close(id)
}

// newFactory builds sessions whose cache rows are scoped to the account of the credentials.
func newFactory(conf *config.Config, p *persistence.Persistence) registry.Factory {
	return func(creds *domain.Credentials) (domain.MailboxSession, *mailcache.CachedMailbox, error) {
		cache := p.ForAccount(creds.Account())

		opts := []imapconnection.Option{
			imapconnection.ConnectTimeout(conf.ConnectTimeout.Duration),
			imapconnection.AuthTimeout(conf.AuthTimeout.Duration),
		}
		if conf.Compress {
			opts = append(opts, imapconnection.Compress())
		}
		session := imapconnection.NewImapSession(opts...)

		synchronizer, err := mailsync.NewSynchronizer(cache, session,
			mailsync.FastBatch(conf.FastBatch),
			mailsync.TargetLimit(conf.TargetLimit),
			mailsync.BatchSize(conf.BatchSize),
			mailsync.Interval(conf.SyncInterval.Duration),
			mailsync.EvictAfter(conf.EvictAfterDays),
		)
		if err != nil {
			return nil, nil, err
		}

		configs := []mailcache.ConfigFunc{mailcache.AutoSync(conf.AutoSync)}
		if conf.RollbackOnRemoteFailure {
			configs = append(configs, mailcache.RollbackOnRemoteFailure())
		}
		if len(conf.SentFolder) > 0 {
			configs = append(configs, mailcache.SentFolder(conf.SentFolder))
		}
		mailbox, err := mailcache.NewCachedMailbox(cache, session, synchronizer, configs...)
		if err != nil {
			return nil, nil, err
		}
		return session, mailbox, nil
	}
}

func logEvents(logger *logrus.Logger, events <-chan mailsync.Event) {
	for e := range events {
		fields := logrus.Fields{"folder": e.Folder, "event": e.Kind}
		if e.Result != nil {
			fields["fetched"] = e.Result.Fetched
			fields["cursor"] = e.Result.Cursor
		}
		switch e.Kind {
		case mailsync.SyncFailed, mailsync.ConnectionLost:
			logger.WithFields(fields).WithField("error", e.Err).Warn("Sync problem")
		default:
			logger.WithFields(fields).Debug("Sync event")
		}
	}
}
