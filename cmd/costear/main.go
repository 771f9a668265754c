// costear corre el costeo FIFO por línea de comandos, pensado para el cron
// nocturno del cierre.
//
// Uso:
//
//	go run ./cmd/costear -corte 2026-03-31
//	go run ./cmd/costear -corte 2026-03-31 -grupo EMPRESA/CUSTODIO/INSTRUMENTO/CUENTA
//
// Sin -corte usa la fecha de hoy. Termina con código 1 si algún grupo falló.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	var (
		corteFlag   = flag.String("corte", "", "fecha de corte YYYY-MM-DD (default: hoy)")
		grupoFlag   = flag.String("grupo", "", "grupo único empresa/custodio/instrumento/cuenta (default: todos)")
		timeoutFlag = flag.Duration("timeout", 30*time.Minute, "tiempo máximo de la corrida")
	)
	flag.Parse()

	corte := time.Now().UTC().Truncate(24 * time.Hour)
	if *corteFlag != "" {
		parsed, err := time.Parse("2006-01-02", *corteFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "corte inválido %q: %v\n", *corteFlag, err)
			os.Exit(2)
		}
		corte = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := costeo.NewUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewTransaccionRepository(pool),
		postgres.NewKardexRepository(pool),
		costeo.NewCandadoGrupos(),
		cfg.Costeo.Workers,
		log,
	)

	if *grupoFlag != "" {
		grupo, err := parseGrupo(*grupoFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		res, err := uc.ProcesarGrupo(ctx, grupo, corte)
		if err != nil {
			log.Fatal().Err(err).Str("grupo", grupo.String()).Msg("corrida del grupo falló")
		}
		log.Info().Str("grupo", grupo.String()).Int("filas", res.Filas).
			Int("pendientes", len(res.Pendientes)).Msg("grupo costeado")
		return
	}

	res, err := uc.ProcesarCosteo(ctx, corte)
	if err != nil {
		log.Fatal().Err(err).Msg("corrida de costeo falló")
	}
	log.Info().
		Time("corte", res.Corte).
		Int("procesados", res.Procesados).
		Int("fallidos", res.Fallidos).
		Int("pendientes_conciliacion", len(res.PendientesConciliacion)).
		Msg("corrida terminada")
	for grupo, causa := range res.Errores {
		log.Error().Str("grupo", grupo).Str("causa", causa).Msg("grupo fallido")
	}
	if res.Fallidos > 0 {
		os.Exit(1)
	}
}

// parseGrupo interpreta empresa/custodio/instrumento/cuenta.
func parseGrupo(s string) (entity.GrupoCosteo, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return entity.GrupoCosteo{}, fmt.Errorf("grupo inválido %q: se espera empresa/custodio/instrumento/cuenta", s)
	}
	grupo := entity.GrupoCosteo{
		EmpresaID:     parts[0],
		CustodioID:    parts[1],
		InstrumentoID: parts[2],
		Cuenta:        parts[3],
	}
	if !grupo.Valida() {
		return entity.GrupoCosteo{}, fmt.Errorf("grupo inválido %q: componentes vacíos", s)
	}
	return grupo, nil
}
