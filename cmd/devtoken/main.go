// devtoken emite un JWT para pruebas locales con el secreto configurado.
//
// Uso: go run ./cmd/devtoken [rol] [user_id]
// rol: admin (por defecto) | vendedor | bodeguero
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/jwt"
)

func main() {
	role := jwt.RoleAdmin
	if len(os.Args) > 1 {
		role = os.Args[1]
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleVendedor, jwt.RoleBodeguero:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", role)
		os.Exit(2)
	}
	userID := uuid.New().String()
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
