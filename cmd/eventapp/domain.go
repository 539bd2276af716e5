package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/eventapp-cli/internal/admin"
	"github.com/dropDatabas3/eventapp-cli/internal/checkout"
	"github.com/dropDatabas3/eventapp-cli/internal/events"
	"github.com/dropDatabas3/eventapp-cli/internal/profile"
	"github.com/dropDatabas3/eventapp-cli/internal/support"
)

func eventosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventos",
		Short: "Catálogo de eventos",
	}

	var categoria, lugar string
	list := &cobra.Command{
		Use:   "list",
		Short: "Listar eventos, con filtro local por categoría y lugar",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.catalog.Todos(cmd.Context())
			if err != nil {
				return err
			}
			filtered := events.Filtro{Categoria: categoria, Ubicacion: lugar}.Aplicar(all)
			if a.out == "json" {
				a.printJSON(filtered)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOMBRE\tLUGAR\tFECHA\tCATEGORÍA")
			for _, ev := range filtered {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					ev.ID, ev.Nombre, ev.Lugar, ev.Fecha.Format("2006-01-02"), ev.Categoria)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&categoria, "categoria", "", "Filtrar por categoría")
	list.Flags().StringVar(&lugar, "lugar", "", "Filtrar por lugar")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Detalle de un evento con disponibilidad por tipo de boleto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := a.catalog.Uno(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.out == "json" {
				a.printJSON(ev)
				return nil
			}
			fmt.Printf("%s — %s\n%s\n", ev.Nombre, ev.Lugar, ev.Descripcion)
			fmt.Printf("fecha: %s · categoría: %s\n\n", ev.Fecha.Format("2006-01-02 15:04"), ev.Categoria)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BOLETO\tPRECIO\tDISPONIBLES")
			fmt.Fprintf(w, "básico\t$%.2f\t%d\n", ev.Disponibilidad.Basico.Precio, ev.Disponibilidad.Basico.Disponibles)
			fmt.Fprintf(w, "premium\t$%.2f\t%d\n", ev.Disponibilidad.Premium.Precio, ev.Disponibilidad.Premium.Disponibles)
			fmt.Fprintf(w, "vip\t$%.2f\t%d\n", ev.Disponibilidad.Vip.Precio, ev.Disponibilidad.Vip.Disponibles)
			return w.Flush()
		},
	}

	facetas := &cobra.Command{
		Use:   "facetas",
		Short: "Categorías y ubicaciones disponibles",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.catalog.Facets(cmd.Context())
			if err != nil {
				return err
			}
			if a.out == "json" {
				a.printJSON(f)
				return nil
			}
			fmt.Println("categorías: " + strings.Join(f.Categorias, ", "))
			fmt.Println("ubicaciones: " + strings.Join(f.Ubicaciones, ", "))
			return nil
		},
	}

	cmd.AddCommand(list, show, facetas)
	return cmd
}

func comprarCmd(a *app) *cobra.Command {
	var basico, premium, vip int
	var yes bool
	cmd := &cobra.Command{
		Use:   "comprar <eventId>",
		Short: "Comprar boletos de un evento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			ev, err := a.catalog.Uno(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			order := checkout.Order{Basico: basico, Premium: premium, Vip: vip}
			if err := checkout.Validate(ev, order); err != nil {
				return err
			}

			q := checkout.Quote(ev, order)
			fmt.Printf("%s\nsubtotal: $%.2f\niva (16%%): $%.2f\ntotal: $%.2f\n",
				ev.Nombre, q.Subtotal, q.Tax, q.Total)

			if !yes && !confirm("¿Confirmar compra?") {
				fmt.Println("compra cancelada")
				return nil
			}

			msg, err := checkout.Purchase(cmd.Context(), a.client, sess.User.Email, ev, order)
			if err != nil {
				return err
			}
			a.catalog.Invalidate()
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().IntVar(&basico, "basico", 0, "Boletos básicos (máx 5)")
	cmd.Flags().IntVar(&premium, "premium", 0, "Boletos premium (máx 5)")
	cmd.Flags().IntVar(&vip, "vip", 0, "Boletos VIP (máx 5)")
	cmd.Flags().BoolVar(&yes, "si", false, "No pedir confirmación")
	return cmd
}

func perfilCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "perfil",
		Short: "Perfil del usuario: datos, compras y nivel",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			p, err := profile.Fetch(cmd.Context(), a.client, sess.User.Email)
			if err != nil {
				return err
			}
			stats := p.Stats()
			if a.out == "json" {
				a.printJSON(map[string]any{"user": p.User, "purchases": p.Purchases, "stats": stats})
				return nil
			}
			fmt.Printf("%s <%s>\n", p.User.Name, p.User.Email)
			fmt.Printf("eventos: %d · boletos: %d · nivel: %s\n\n",
				stats.TotalEvents, stats.TotalTickets, stats.Level)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EVENTO\tFECHA\tBÁSICO\tPREMIUM\tVIP")
			for _, c := range p.Purchases {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", c.Nombre, c.Fecha, c.Basico, c.Premium, c.Vip)
			}
			return w.Flush()
		},
	}
}

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Gestión de usuarios (solo administradores)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Listar usuarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			list, err := admin.NewService(a.client).Users(cmd.Context())
			if err != nil {
				return err
			}
			if a.out == "json" {
				a.printJSON(list)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOMBRE\tCORREO\tROL")
			for _, u := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
			}
			return w.Flush()
		},
	}

	setRole := &cobra.Command{
		Use:   "set-role <id> <rol>",
		Short: "Cambiar el rol de un usuario (usuario|moderador|administrador)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if err := admin.NewService(a.client).SetRole(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("rol actualizado")
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Eliminar un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if !yes && !confirm("¿Eliminar el usuario "+args[0]+"?") {
				fmt.Println("cancelado")
				return nil
			}
			if err := admin.NewService(a.client).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("usuario eliminado")
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "si", false, "No pedir confirmación")

	cmd.AddCommand(users, setRole, del)
	return cmd
}

func soporteCmd(a *app) *cobra.Command {
	var correo, mensaje string
	cmd := &cobra.Command{
		Use:   "soporte",
		Short: "Enviar un mensaje al equipo de soporte",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Si hay sesión se usa su correo como default
			if correo == "" {
				if sess, ok := a.store.Load(); ok {
					correo = sess.User.Email
				}
			}
			msg, err := support.Send(cmd.Context(), a.client, correo, mensaje)
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&correo, "correo", "", "Correo de contacto (default: el de la sesión)")
	cmd.Flags().StringVar(&mensaje, "mensaje", "", "Mensaje para soporte")
	_ = cmd.MarkFlagRequired("mensaje")
	return cmd
}

// confirm pregunta s/N por stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [s/N]: ", prompt)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	r := strings.ToLower(strings.TrimSpace(sc.Text()))
	return r == "s" || r == "si" || r == "sí"
}
