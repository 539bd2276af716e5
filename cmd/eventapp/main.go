// eventapp es el cliente de terminal de EventApp: login con MFA, registro,
// recuperación de contraseña, catálogo de eventos, compra de boletos,
// perfil y administración de usuarios.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/config"
	"github.com/dropDatabas3/eventapp-cli/internal/events"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/security/totp"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
	"github.com/dropDatabas3/eventapp-cli/internal/tui"
)

// app junta las piezas que comparten todos los comandos.
type app struct {
	cfg     *config.Config
	store   *session.Store
	client  *api.Client
	catalog *events.Catalog
	out     string // "json" | "text"
}

// printJSON imprime v indentado (para --out json).
func (a *app) printJSON(v any) {
	p, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(p))
}

// requireSession retorna la sesión vigente o corta con error.
func (a *app) requireSession() (*session.Session, error) {
	sess, ok := a.store.Load()
	if !ok {
		return nil, fmt.Errorf("no hay sesión activa: corre `eventapp login` primero")
	}
	if sess.Expired(time.Now()) {
		_ = a.store.Clear()
		return nil, fmt.Errorf("la sesión expiró: corre `eventapp login` de nuevo")
	}
	return sess, nil
}

func main() {
	var (
		cfgPath = envOr("EVENTAPP_CONFIG", "eventapp.yaml")
		out     = envOr("EVENTAPP_OUT", "text")
	)

	a := &app{}

	root := &cobra.Command{
		Use:           "eventapp",
		Short:         "Cliente de terminal de EventApp",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(logger.Config{
				Env:   cfg.App.Env,
				Level: cfg.Log.Level,
				File:  cfg.Log.File,
			})

			a.cfg = cfg
			a.out = out
			a.store = session.NewStore(cfg.Session.Path)
			a.client = api.New(cfg.API.BaseURL, a.store, cfg.APITimeout(),
				api.WithOnSessionExpired(func() {
					fmt.Fprintln(os.Stderr, "sesión expirada: vuelve a iniciar sesión")
				}))
			a.catalog = events.NewCatalog(a.client, cfg.EventsTTL())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "Ruta del archivo de configuración (env EVENTAPP_CONFIG)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text (env EVENTAPP_OUT)")

	root.AddCommand(
		loginCmd(a),
		registerCmd(a),
		recoverCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		totpCmd(),
		eventosCmd(a),
		comprarCmd(a),
		perfilCmd(a),
		adminCmd(a),
		soporteCmd(a),
	)

	defer func() { _ = logger.Sync() }()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión (credenciales + MFA)",
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := tui.RunLogin(a.client, a.store)
			if err != nil {
				return err
			}
			switch route {
			case "":
				fmt.Println("login cancelado")
			case flow.RouteLogin:
				fmt.Println("no se pudo iniciar sesión")
			default:
				sess, _ := a.store.Load()
				fmt.Printf("sesión iniciada como %s (%s)\n", sess.User.Email, sess.Role)
			}
			return nil
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "registro",
		Aliases: []string{"register"},
		Short:   "Crear una cuenta nueva (3 pasos)",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := tui.RunRegister(a.client)
			if err != nil {
				return err
			}
			if created {
				fmt.Println("cuenta creada: ya puedes iniciar sesión con `eventapp login`")
			} else {
				fmt.Println("registro no completado")
			}
			return nil
		},
	}
}

func recoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recuperar",
		Short: "Recuperar contraseña por código de correo",
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := tui.RunRecovery(a.client)
			if err != nil {
				return err
			}
			if done {
				fmt.Println("contraseña restablecida")
			} else {
				fmt.Println("recuperación cancelada")
			}
			return nil
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cerrar la sesión local",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Println("sesión cerrada")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar la sesión vigente",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, ok := a.store.Load()
			if !ok {
				fmt.Println("sin sesión")
				return nil
			}
			if a.out == "json" {
				a.printJSON(sess.User)
				return nil
			}
			fmt.Printf("%s <%s> rol=%s\n", sess.User.Name, sess.User.Email, sess.Role)
			if info, ok := sess.TokenClaims(); ok && !info.ExpiresAt.IsZero() {
				fmt.Printf("token expira: %s\n", info.ExpiresAt.Local().Format(time.RFC822))
			}
			return nil
		},
	}
}

func totpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totp <secreto-base32>",
		Short: "Generar el código TOTP vigente para un secreto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			code, err := totp.Code(args[0], now)
			if err != nil {
				return err
			}
			fmt.Printf("%s (vence en %ds)\n", code, totp.Remaining(now))
			return nil
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
