package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/tirtakarya/waterbill/internal/tariff"
)

// TariffHolder exposes the current tariff table. The table can be
// overridden from tariff.yml and is hot-reloaded on file change so a
// rate revision does not require a restart.
type TariffHolder struct {
	current atomic.Value // holds tariff.Table
}

// NewTariffHolder loads tariff.yml if present, otherwise the standing
// default tariff.
func NewTariffHolder() (*TariffHolder, error) {
	v := viper.New()

	v.SetConfigName("tariff")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/waterbill/config")
	v.AddConfigPath("/etc/waterbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WATERBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &TariffHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(tariff.Default())
		return holder, nil
	}

	table, err := unmarshalTariff(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(table)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := unmarshalTariff(v)
		if err != nil {
			log.Printf("[tariff-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tariff-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticTariff wraps a fixed table, used by tests and tools.
func StaticTariff(table tariff.Table) *TariffHolder {
	holder := &TariffHolder{}
	holder.current.Store(table)
	return holder
}

func (h *TariffHolder) Get() tariff.Table {
	return h.current.Load().(tariff.Table)
}

func unmarshalTariff(v *viper.Viper) (tariff.Table, error) {
	table := tariff.Default()
	if err := v.UnmarshalKey("tariff", &table); err != nil {
		return tariff.Table{}, err
	}
	if err := validateTariff(table); err != nil {
		return tariff.Table{}, err
	}
	return table, nil
}

func validateTariff(table tariff.Table) error {
	if len(table.Rates) == 0 {
		return errors.New("tariff.rates cannot be empty")
	}
	if table.DueDay < 1 || table.DueDay > 28 {
		return errors.New("tariff.dueDay must be between 1 and 28")
	}
	if table.LateFee < 0 {
		return errors.New("tariff.lateFee cannot be negative")
	}
	for category, rate := range table.Rates {
		if rate.PerUnitRate < 0 || rate.BaseFee < 0 {
			return errors.New("tariff rate for " + string(category) + " cannot be negative")
		}
	}
	return nil
}
