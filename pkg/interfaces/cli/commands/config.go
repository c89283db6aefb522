package commands

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/vsinha/bomplanner/pkg/application/services/bom"
	"github.com/vsinha/bomplanner/pkg/application/services/mrp"
	"github.com/vsinha/bomplanner/pkg/domain/services"
	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/infrastructure/metrics"
	"github.com/vsinha/bomplanner/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/bomplanner/pkg/interfaces/cli/output"
)

// Configuration keys
const (
	keyLogLevel       = "log.level"
	keyOutputFormat   = "output.format"
	keyServerAddr     = "server.addr"
	keyQuantitySource = "mrp.quantity_source"
	keyLettersOnly    = "input.letters_only"
)

// Config holds settings resolved from flags, environment and config file
type Config struct {
	LogLevel       string
	Format         string
	ServerAddr     string
	QuantitySource mrp.QuantitySource
	LettersOnly    bool
}

// newViper creates a viper instance with defaults, BOMPLANNER_ env vars and
// an optional bomplanner.yaml in the working directory
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyOutputFormat, output.FormatText)
	v.SetDefault(keyServerAddr, ":8080")
	v.SetDefault(keyQuantitySource, mrp.CatalogQuantities.String())
	v.SetDefault(keyLettersOnly, false)

	v.SetEnvPrefix("BOMPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("bomplanner")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// readConfigFile loads path, or the default search path when path is empty.
// A missing default file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", path)
		}
		return nil
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// LoadConfig resolves and validates the configuration
func LoadConfig(v *viper.Viper) (Config, error) {
	source, err := mrp.ParseQuantitySource(v.GetString(keyQuantitySource))
	if err != nil {
		return Config{}, err
	}

	format := v.GetString(keyOutputFormat)
	if err := output.ValidateFormat(format); err != nil {
		return Config{}, err
	}

	return Config{
		LogLevel:       v.GetString(keyLogLevel),
		Format:         format,
		ServerAddr:     v.GetString(keyServerAddr),
		QuantitySource: source,
		LettersOnly:    v.GetBool(keyLettersOnly),
	}, nil
}

// app bundles the components a command works with
type app struct {
	config   Config
	repo     *memory.BOMRepository
	service  *bom.Service
	events   *events.InMemoryEventStore
	recorder *metrics.Recorder
}

// newApp wires a fresh in-memory BOM. Notifications go to notifier and are
// also kept in the app's event store.
func newApp(cfg Config, notifier events.Notifier) *app {
	repo := memory.NewBOMRepository()
	store := events.NewInMemoryEventStore()
	recorder := metrics.NewRecorder()

	engine := mrp.NewMRPServiceWithConfig(repo, mrp.EngineConfig{QuantitySource: cfg.QuantitySource})
	service := bom.NewService(repo, engine,
		bom.WithNotifier(events.MultiNotifier{notifier, events.NewStoreNotifier(store)}),
		bom.WithEventStore(store),
		bom.WithMetrics(recorder),
		bom.WithInputValidator(services.NewInputValidator(cfg.LettersOnly)),
	)

	return &app{
		config:   cfg,
		repo:     repo,
		service:  service,
		events:   store,
		recorder: recorder,
	}
}
