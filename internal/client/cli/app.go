package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/backend"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/config"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/entitlement"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/filestore"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/mediator"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/services"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/session"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/uploader"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the orchestration core for terminal use.
type App struct {
	config    *config.Config
	bus       *eventbus.Bus
	store     *filestore.Store
	session   *session.Store
	mediator  *mediator.Mediator
	uploader  *uploader.Widget
	providers *cloud.Registry
	policy    entitlement.Policy
	// tokenPolicy is non-nil only when an entitlement secret is configured;
	// the settings panel uses it to install tokens.
	tokenPolicy *entitlement.TokenPolicy
	renderer    *renderer
	logger      logging.Logger
}

// NewApp assembles the bus, the stores, the services and the widget from cfg.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewDefault("pdfsmaller")
	bus := eventbus.New(logger)

	store := filestore.New(bus, filestore.Options{
		MaxFileBytes:    c.MaxFileBytes,
		MaxSessionBytes: c.MaxSessionBytes,
	}, logger)

	dsn := c.SessionDSN
	if dsn == "" {
		dsn = session.DefaultDSN
	}
	sess, err := session.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	// Without a configured secret there is nothing to verify tokens against;
	// local use runs fully entitled.
	var policy entitlement.Policy = entitlement.AllowAll()
	var tokenPolicy *entitlement.TokenPolicy
	if c.EntitlementSecret != "" {
		tokenPolicy = entitlement.NewTokenPolicy([]byte(c.EntitlementSecret))
		policy = tokenPolicy
	}

	providers := cloud.NewRegistry()
	providers.Register(cloud.NewMemoryProvider(cloud.Memory))
	providers.Register(cloud.NewUnconnected(cloud.GoogleDrive))
	providers.Register(cloud.NewUnconnected(cloud.Dropbox))
	providers.Register(cloud.NewUnconnected(cloud.OneDrive))
	if c.S3.Bucket != "" {
		s3p, err := cloud.NewS3Provider(cloud.S3Config{
			Region:    c.S3.Region,
			Bucket:    c.S3.Bucket,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring s3 provider: %w", err)
		}
		providers.Register(s3p)
	}

	// The remote endpoints are an external collaborator; the bundled stub
	// stands in for them so every panel works offline.
	remote := &backend.Stub{}

	med := mediator.New(bus, store, policy, logger, mediator.Options{
		WatchdogWindow: c.WatchdogWindow,
	})
	for _, svc := range []services.Service{
		services.NewCompression(bus, logger, remote),
		services.NewConversion(bus, logger, remote),
		services.NewOCR(bus, logger, remote),
		services.NewSummarize(bus, logger, remote),
		services.NewTranslate(bus, logger, remote),
		services.NewCloudUpload(bus, logger, providers),
		services.NewCloudDownload(bus, logger, providers),
	} {
		svc.SetFileTimeout(c.FileRequestTimeout)
		if err := med.Register(svc); err != nil {
			return nil, fmt.Errorf("registering %s: %w", svc.Kind(), err)
		}
	}

	widget := uploader.New(bus, store, sess, logger)

	return &App{
		config:      c,
		bus:         bus,
		store:       store,
		session:     sess,
		mediator:    med,
		uploader:    widget,
		providers:   providers,
		policy:      policy,
		tokenPolicy: tokenPolicy,
		renderer:    newRenderer(bus, os.Stdout),
		logger:      logger,
	}, nil
}

// Run starts the core and enters the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.session.Close()
	defer a.mediator.Close()

	if err := a.mediator.Start(ctx); err != nil {
		return err
	}

	attrs := map[string]string{
		"accept":       a.config.Accept,
		"default-mode": a.config.DefaultMode,
	}
	if !a.config.RememberPreference {
		attrs["remember-preference"] = "false"
	}
	if err := a.uploader.Initialize(ctx, attrs); err != nil {
		return err
	}

	a.renderer.attach()
	defer a.renderer.detach()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
	return nil
}

// status feeds the REPL prompt: mode plus held file count.
func (a *App) status() string {
	files := a.uploader.GetSelectedFiles()
	return fmt.Sprintf("%s, %d file(s)", a.uploader.GetMode(), len(files))
}
