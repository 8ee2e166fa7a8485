package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Import    ImportConfig    `yaml:"import"`
	Server    ServerConfig    `yaml:"server"`
	Export    ExportConfig    `yaml:"export"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig selects the store. Driver "sqlite" uses Path, driver
// "postgres" uses the connection fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// ImportConfig controls CSV ingestion.
type ImportConfig struct {
	Encoding             string            `yaml:"encoding"` // "utf-8" or "windows-1252"
	MaxDiagnostics       int               `yaml:"max_diagnostics"`
	MaxSelectionAttempts int               `yaml:"max_selection_attempts"`
	Selector             string            `yaml:"selector"` // "prompt", "skip" or "fail"
	FirstPaymentColumn   int               `yaml:"first_payment_column"`
	OrderColumns         OrderColumnConfig `yaml:"order_columns"`
}

// OrderColumnConfig holds zero-based positions in the order-number-keyed export.
type OrderColumnConfig struct {
	PaymentDate   *int `yaml:"payment_date"`
	CustomerID    *int `yaml:"customer_id"`
	OrderNumber   *int `yaml:"order_number"`
	ReceiptNumber *int `yaml:"receipt_number"`
	Name          *int `yaml:"name"`
	Amount        *int `yaml:"amount"`
	MinColumns    int  `yaml:"min_columns"`
}

// ServerConfig is the listen address of the read-only report API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ExportConfig is where scheduled report files are written. Keep > 0 limits
// how many outstanding exports are retained; 0 keeps all of them.
type ExportConfig struct {
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExportOutstanding string `yaml:"export_outstanding"`
}

// Load reads configuration from a YAML file. A missing file is not an error:
// the defaults describe a local SQLite database next to the binary.
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with RECON_* environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("RECON_DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("RECON_DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("RECON_DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("RECON_DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("RECON_DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("RECON_DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("RECON_DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("RECON_DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Import
	if val := os.Getenv("RECON_IMPORT_ENCODING"); val != "" {
		c.Import.Encoding = val
	}
	if val := os.Getenv("RECON_IMPORT_SELECTOR"); val != "" {
		c.Import.Selector = val
	}

	// Log
	if val := os.Getenv("RECON_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("RECON_LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Export
	if val := os.Getenv("RECON_EXPORT_DIR"); val != "" {
		c.Export.Dir = val
	}
}

// Validate fills defaults and checks the configuration
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case "", "sqlite", "sqlite3":
		c.Database.Driver = "sqlite"
		if c.Database.Path == "" {
			c.Database.Path = "database.db"
		}
	case "postgres", "postgresql":
		c.Database.Driver = "postgres"
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	c.Import.Encoding = strings.ToLower(c.Import.Encoding)
	switch c.Import.Encoding {
	case "", "utf-8", "utf8":
		c.Import.Encoding = "utf-8"
	case "windows-1252", "cp1252", "latin1":
		c.Import.Encoding = "windows-1252"
	default:
		return fmt.Errorf("unsupported import encoding: %s", c.Import.Encoding)
	}
	switch c.Import.Selector {
	case "":
		c.Import.Selector = "prompt"
	case "prompt", "skip", "fail":
	default:
		return fmt.Errorf("unsupported selector: %s", c.Import.Selector)
	}
	if c.Import.MaxDiagnostics <= 0 {
		c.Import.MaxDiagnostics = 20
	}
	if c.Import.MaxSelectionAttempts <= 0 {
		c.Import.MaxSelectionAttempts = 3
	}
	if c.Import.FirstPaymentColumn <= 0 {
		c.Import.FirstPaymentColumn = 6
	}
	if err := c.Import.OrderColumns.fillDefaults(); err != nil {
		return err
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8088
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
	if c.Export.Keep < 0 {
		return fmt.Errorf("export.keep must not be negative")
	}
	if c.Scheduler.ExportOutstanding == "" {
		c.Scheduler.ExportOutstanding = "0 0 6 1 * *" // 1st of month at 6 AM UTC
	}

	return nil
}

func (o *OrderColumnConfig) fillDefaults() error {
	cols := []struct {
		name string
		pos  **int
		def  int
	}{
		{"payment_date", &o.PaymentDate, 0},
		{"customer_id", &o.CustomerID, 1},
		{"order_number", &o.OrderNumber, 2},
		{"receipt_number", &o.ReceiptNumber, 3},
		{"name", &o.Name, 4},
		{"amount", &o.Amount, 5},
	}
	highest := 0
	for _, col := range cols {
		if *col.pos == nil {
			v := col.def
			*col.pos = &v
		}
		if **col.pos < 0 {
			return fmt.Errorf("order column %s must not be negative", col.name)
		}
		if **col.pos > highest {
			highest = **col.pos
		}
	}
	if o.MinColumns == 0 {
		o.MinColumns = highest + 1
	}
	if o.MinColumns <= highest {
		return fmt.Errorf("order_columns.min_columns must be greater than %d", highest)
	}
	return nil
}

// GetDatabaseDSN returns the driver name and data source name for sql.Open
func (c *Config) GetDatabaseDSN() (string, string) {
	if c.Database.Driver == "postgres" {
		return "postgres", fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Database,
			c.Database.SSLMode,
		)
	}
	return "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Database.Path)
}

// GetServerAddress returns the report API address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
