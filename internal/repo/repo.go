package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"Thermex/internal/fluid"

	_ "github.com/lib/pq"
)

const Schema = `CREATE TABLE IF NOT EXISTS fluid_properties (
	substance     TEXT             NOT NULL,
	temperature_f DOUBLE PRECISION NOT NULL,
	density       DOUBLE PRECISION NOT NULL,
	specific_heat DOUBLE PRECISION NOT NULL,
	viscosity     DOUBLE PRECISION NOT NULL,
	conductivity  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (substance, temperature_f)
)`

type PropertyRepository interface {
	fluid.Provider
	Store(ctx context.Context, substance string, points []fluid.Point) error
}

type PostgresPropertyRepository struct {
	db *sql.DB
}

func NewPostgresPropertyDB(db *sql.DB) *PostgresPropertyRepository {
	return &PostgresPropertyRepository{db: db}
}

// DSN fills in the local default and forces TLS unless sslmode is set.
func DSN(connStr string) string {
	if connStr == "" {
		connStr = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	return connStr
}

// Open connects and pings the database.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("repo: configure database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo: database not responding: %w", err)
	}
	return db, nil
}

func (r *PostgresPropertyRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Store upserts tabulated points for one substance in a single transaction.
func (r *PostgresPropertyRepository) Store(ctx context.Context, substance string, points []fluid.Point) error {
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("repo: %s at %g F: %w", substance, p.TemperatureF, err)
		}
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO fluid_properties (substance, temperature_f, density, specific_heat, viscosity, conductivity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (substance, temperature_f) DO UPDATE
		SET density = EXCLUDED.density, specific_heat = EXCLUDED.specific_heat,
			viscosity = EXCLUDED.viscosity, conductivity = EXCLUDED.conductivity`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	name := fluid.Normalize(substance)
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, name, p.TemperatureF,
			p.DensityLbFt3, p.SpecificHeatBtuLbF, p.ViscosityLbFtH, p.ConductivityBtuHFt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Lookup reads the rows bracketing the temperature and interpolates between
// them. An exact row is returned as stored.
func (r *PostgresPropertyRepository) Lookup(ctx context.Context, substance string, temperatureF float64) (p fluid.Properties, err error) {
	defer func() { fluid.Observe("postgres", err) }()
	name := fluid.Normalize(substance)

	query := `(SELECT temperature_f, density, specific_heat, viscosity, conductivity
			FROM fluid_properties WHERE substance = $1 AND temperature_f <= $2
			ORDER BY temperature_f DESC LIMIT 1)
		UNION ALL
		(SELECT temperature_f, density, specific_heat, viscosity, conductivity
			FROM fluid_properties WHERE substance = $1 AND temperature_f > $2
			ORDER BY temperature_f ASC LIMIT 1)`
	rows, err := r.db.QueryContext(ctx, query, name, temperatureF)
	if err != nil {
		return fluid.Properties{}, fmt.Errorf("%w: postgres: %v", fluid.ErrUnavailable, err)
	}
	defer rows.Close()

	var bracket []fluid.Point
	for rows.Next() {
		var pt fluid.Point
		if err := rows.Scan(&pt.TemperatureF, &pt.DensityLbFt3, &pt.SpecificHeatBtuLbF, &pt.ViscosityLbFtH, &pt.ConductivityBtuHFt); err != nil {
			return fluid.Properties{}, fmt.Errorf("%w: postgres row: %v", fluid.ErrMalformed, err)
		}
		bracket = append(bracket, pt)
	}
	if err := rows.Err(); err != nil {
		return fluid.Properties{}, fmt.Errorf("%w: postgres: %v", fluid.ErrUnavailable, err)
	}

	props, err := resolve(bracket, temperatureF)
	if errors.Is(err, fluid.ErrOutOfRange) && len(bracket) == 0 {
		known, kerr := r.known(ctx, name)
		if kerr != nil {
			return fluid.Properties{}, kerr
		}
		if !known {
			return fluid.Properties{}, fmt.Errorf("%w: %q", fluid.ErrUnknownSubstance, substance)
		}
	}
	if err != nil {
		return fluid.Properties{}, fmt.Errorf("%s: %w", substance, err)
	}
	return props, nil
}

func (r *PostgresPropertyRepository) known(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM fluid_properties WHERE substance=$1)"
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: postgres: %v", fluid.ErrUnavailable, err)
	}
	return exists, nil
}

// resolve turns the lower/upper bracket rows into properties at t.
func resolve(bracket []fluid.Point, t float64) (fluid.Properties, error) {
	var lo, hi *fluid.Point
	for i := range bracket {
		if bracket[i].TemperatureF <= t {
			lo = &bracket[i]
		} else {
			hi = &bracket[i]
		}
	}
	var p fluid.Properties
	switch {
	case lo != nil && lo.TemperatureF == t:
		p = lo.Properties
	case lo != nil && hi != nil:
		p = interpolate(*lo, *hi, t)
	default:
		return fluid.Properties{}, fmt.Errorf("%w: %g F", fluid.ErrOutOfRange, t)
	}
	if err := p.Validate(); err != nil {
		return fluid.Properties{}, fmt.Errorf("%w: %v", fluid.ErrMalformed, err)
	}
	return p, nil
}

func interpolate(lo, hi fluid.Point, t float64) fluid.Properties {
	f := (t - lo.TemperatureF) / (hi.TemperatureF - lo.TemperatureF)
	lerp := func(a, b float64) float64 { return a + f*(b-a) }
	return fluid.Properties{
		DensityLbFt3:       lerp(lo.DensityLbFt3, hi.DensityLbFt3),
		SpecificHeatBtuLbF: lerp(lo.SpecificHeatBtuLbF, hi.SpecificHeatBtuLbF),
		ViscosityLbFtH:     lerp(lo.ViscosityLbFtH, hi.ViscosityLbFtH),
		ConductivityBtuHFt: lerp(lo.ConductivityBtuHFt, hi.ConductivityBtuHFt),
	}
}
