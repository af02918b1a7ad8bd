// subscription-admin opera suscripciones desde la terminal, sin pasar por la API.
//
// Uso:
//
//	go run ./cmd/subscription-admin status <owner_id>
//	go run ./cmd/subscription-admin start-trial <owner_id>
//	go run ./cmd/subscription-admin block <owner_id>
//	go run ./cmd/subscription-admin unblock <owner_id>
//	go run ./cmd/subscription-admin expire-sweep
//	go run ./cmd/subscription-admin quote -employees 5 -projects 10 -months 12
//
// Lee la misma configuración que la API (DB_*, PLAN_*) y escribe el resultado como JSON en stdout.
// Pensado para cron: expire-sweep sale con código 1 si el barrido se interrumpe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/infrastructure/postgres"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/config"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/logger"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/money"
)

const usage = `uso: subscription-admin <comando> [args]

comandos:
  status <owner_id>        estado derivado y habilitaciones
  start-trial <owner_id>   abre el trial de una cuenta sin suscripción
  block <owner_id>         bloquea la cuenta
  unblock <owner_id>       levanta el bloqueo
  expire-sweep             pasa a expired las suscripciones vencidas
  quote [-employees N] [-projects N] [-months N]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	// Los logs van a stderr; stdout queda para el JSON.
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "subscription-admin",
		Out:     os.Stderr,
	})

	lifecycle, err := subscription.NewLifecycle(billing.PlanFromConfig(cfg.Plan))
	if err != nil {
		log.Fatal().Err(err).Msg("plan inválido")
	}
	formatter, err := money.NewFormatter(cfg.Plan.Currency, language.English)
	if err != nil {
		log.Fatal().Err(err).Msg("moneda del plan")
	}

	// quote no necesita base de datos.
	if cmd == "quote" {
		uc := billing.NewUseCase(nil, nil, lifecycle, formatter, time.Now, log.Component("billing"))
		exit(result(runQuote(uc, args)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Sin Redis: la API invalida su caché por TTL.
	txRunner := postgres.NewTxRunner(pool, nil, log.Component("tx"))
	uc := billing.NewUseCase(postgres.NewSubscriptionRepository(pool), txRunner, lifecycle, formatter, time.Now, log.Component("billing"))

	var out any
	switch cmd {
	case "status":
		out, err = withOwner(args, func(owner string) (any, error) { return result(uc.Status(ctx, owner)) })
	case "start-trial":
		out, err = withOwner(args, func(owner string) (any, error) { return result(uc.StartTrial(ctx, owner)) })
	case "block":
		out, err = withOwner(args, func(owner string) (any, error) { return result(uc.Block(ctx, owner)) })
	case "unblock":
		out, err = withOwner(args, func(owner string) (any, error) { return result(uc.Unblock(ctx, owner)) })
	case "expire-sweep":
		out, err = result(uc.ExpireOverdue(ctx))
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	exit(out, err)
}

func withOwner(args []string, fn func(owner string) (any, error)) (any, error) {
	if len(args) != 1 || args[0] == "" {
		return nil, fmt.Errorf("se requiere exactamente un owner_id")
	}
	return fn(args[0])
}

func runQuote(uc *billing.UseCase, args []string) (*dto.QuoteResponse, error) {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	employees := fs.Int("employees", 0, "empleados del paquete")
	projects := fs.Int("projects", 0, "proyectos del paquete")
	months := fs.Int("months", 1, "meses (1 a 36)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return uc.Quote(dto.QuoteRequest{MaxEmployees: *employees, MaxProjects: *projects, Months: *months})
}

// result evita que un puntero nil llegue a exit como any no nulo.
func result[T any](v *T, err error) (any, error) {
	if v == nil {
		return nil, err
	}
	return v, err
}

// exit imprime out como JSON, o el error en stderr con código 1.
// Un resultado parcial (barrido interrumpido) se imprime igual antes de salir.
func exit(out any, err error) {
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			fmt.Fprintf(os.Stderr, "Escribir salida: %v\n", encErr)
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
