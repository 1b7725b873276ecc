package shared

import (
	"path/filepath"
	"reflect"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the process configuration. Every key is read from the
// upper-cased environment variable of its mapstructure name.
type Config struct {
	AppEnv      string `mapstructure:"app_env" default:"prod"`
	HTTPAddr    string `mapstructure:"http_addr" default:":8080"`
	MetricsAddr string `mapstructure:"metrics_addr" default:""`
	MySQLDSN    string `mapstructure:"mysql_dsn" default:"root:root@tcp(localhost:3306)/hotelmerge?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`
	RedisAddr   string `mapstructure:"redis_addr" default:"localhost:6379"`
	RedisPass   string `mapstructure:"redis_password" default:""`
	RedisDB     int    `mapstructure:"redis_db" default:"0"`

	SuppliersFile string `mapstructure:"suppliers_file" default:"configs/suppliers.json"`
	AmenitiesFile string `mapstructure:"amenities_file" default:"configs/amenities.json"`
	MergeFile     string `mapstructure:"merge_file" default:"configs/merge.json"`
	OutputFile    string `mapstructure:"output_file" default:"output.json"`

	FetchWorkers    int `mapstructure:"fetch_workers" default:"4"`
	PersistWorkers  int `mapstructure:"persist_workers" default:"8"`
	SupplierRPS     int `mapstructure:"supplier_rps" default:"5"`
	FetchTimeoutSec int `mapstructure:"fetch_timeout_seconds" default:"20"`
	CacheTTLSec     int `mapstructure:"cache_ttl_seconds" default:"900"`
}

func (c Config) FetchTimeout() time.Duration { return time.Duration(c.FetchTimeoutSec) * time.Second }
func (c Config) CacheTTL() time.Duration     { return time.Duration(c.CacheTTLSec) * time.Second }

// Load reads an optional .env in dir, then the environment.
func Load(dir string) (Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	bindDefaults(v, Config{})
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	if c.FetchWorkers < 1 {
		log.Warn().Int("fetch_workers", c.FetchWorkers).Msg("FETCH_WORKERS must be positive, using 1")
		c.FetchWorkers = 1
	}
	if c.PersistWorkers < 1 {
		log.Warn().Int("persist_workers", c.PersistWorkers).Msg("PERSIST_WORKERS must be positive, using 1")
		c.PersistWorkers = 1
	}
	return c, nil
}

// bindDefaults registers every tagged key so AutomaticEnv can find it.
func bindDefaults(v *viper.Viper, iface any) {
	t := reflect.TypeOf(iface)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if key := f.Tag.Get("mapstructure"); key != "" {
			v.SetDefault(key, f.Tag.Get("default"))
		}
	}
}
