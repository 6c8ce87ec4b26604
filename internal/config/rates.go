package config

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RateEntry is one service line in rates.yml. Names are kept as a list
// because viper folds map keys to lower case.
type RateEntry struct {
	Name string  `mapstructure:"name"`
	Rate float64 `mapstructure:"rate"`
}

type RatesFile struct {
	Default  float64     `mapstructure:"default"`
	Services []RateEntry `mapstructure:"services"`
}

func DefaultRatesFile() RatesFile {
	table := ratingdomain.DefaultTable()
	out := RatesFile{Default: table.Default.InexactFloat64()}
	for _, name := range table.Names() {
		out.Services = append(out.Services, RateEntry{Name: name, Rate: table.Rates[name].InexactFloat64()})
	}
	return out
}

// RatesHolder serves the current rate table and swaps it when rates.yml changes.
type RatesHolder struct {
	current atomic.Value // holds ratingdomain.Table
}

func NewRatesHolder(log *zap.Logger) (*RatesHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("rates-config")

	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/consultinvoice")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONSULTINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path := strings.TrimSpace(v.GetString("rates_file")); path != "" {
		v.SetConfigFile(path)
	}

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
		defaults := DefaultRatesFile()
		services := make([]map[string]any, 0, len(defaults.Services))
		for _, entry := range defaults.Services {
			services = append(services, map[string]any{"name": entry.Name, "rate": entry.Rate})
		}
		v.SetDefault("rates.default", defaults.Default)
		v.SetDefault("rates.services", services)
	}

	table, err := loadTable(v)
	if err != nil {
		return nil, err
	}

	holder := &RatesHolder{}
	holder.current.Store(table)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := loadTable(v)
			if err != nil {
				log.Warn("invalid rate table ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("rate table reloaded", zap.String("file", e.Name), zap.Int("services", len(updated.Rates)))
		})
	}

	return holder, nil
}

// NewStaticRatesHolder returns a holder that never reloads.
func NewStaticRatesHolder(table ratingdomain.Table) *RatesHolder {
	holder := &RatesHolder{}
	holder.current.Store(table.Clone())
	return holder
}

func (h *RatesHolder) Get() ratingdomain.Table {
	return h.current.Load().(ratingdomain.Table)
}

func loadTable(v *viper.Viper) (ratingdomain.Table, error) {
	var file RatesFile
	if err := v.UnmarshalKey("rates", &file); err != nil {
		return ratingdomain.Table{}, err
	}
	return file.Table()
}

// Table converts the file form into a validated rate table.
func (f RatesFile) Table() (ratingdomain.Table, error) {
	table := ratingdomain.Table{
		Rates:   make(map[string]decimal.Decimal, len(f.Services)),
		Default: decimal.NewFromFloat(f.Default).Round(2),
	}
	for _, entry := range f.Services {
		name := strings.TrimSpace(entry.Name)
		if _, dup := table.Rates[name]; dup {
			return ratingdomain.Table{}, fmt.Errorf("duplicate service %q in rates", name)
		}
		table.Rates[name] = decimal.NewFromFloat(entry.Rate).Round(2)
	}
	if err := ratingdomain.Validate(table); err != nil {
		return ratingdomain.Table{}, err
	}
	return table, nil
}
