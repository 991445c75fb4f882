package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/model"
)

const (
	adminEmail    = "admin@coleta.com"
	adminPassword = "admin123"
	adminName     = "Administrador"
)

var defaultMaterials = []model.MaterialType{
	{Name: "Papel/Papelão", Description: "Jornais, revistas, caixas de papelão, papel de escritório", Active: true},
	{Name: "Plástico", Description: "Garrafas PET, embalagens plásticas, sacos plásticos", Active: true},
	{Name: "Metal", Description: "Latas de alumínio, latas de aço, metais ferrosos", Active: true},
	{Name: "Vidro", Description: "Garrafas de vidro, potes, frascos", Active: true},
	{Name: "Eletrônicos", Description: "Computadores, celulares, eletrodomésticos pequenos", Active: true},
	{Name: "Óleo de Cozinha", Description: "Óleo usado de frituras e cozimento", Active: true},
}

type userSeeder interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
}

type materialSeeder interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, m *model.MaterialType) error
}

type seedReport struct {
	adminCreated     bool
	materialsCreated int
}

func (r seedReport) print(w io.Writer) {
	if r.adminCreated {
		fmt.Fprintf(w, "admin user created: %s / %s\n", adminEmail, adminPassword)
	} else {
		fmt.Fprintln(w, "admin user already exists")
	}
	if r.materialsCreated > 0 {
		fmt.Fprintf(w, "%d material types created\n", r.materialsCreated)
	} else {
		fmt.Fprintln(w, "material types already exist")
	}
}

// seed creates the admin user if missing, and the default material types if
// the table is empty. Running it twice changes nothing.
func seed(ctx context.Context, users userSeeder, materials materialSeeder) (seedReport, error) {
	var report seedReport

	exists, err := users.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		return report, fmt.Errorf("checking admin user: %w", err)
	}
	if !exists {
		hash, err := crypto.HashPasswordBcrypt(adminPassword)
		if err != nil {
			return report, err
		}
		admin := &model.User{Email: adminEmail, Credential: hash, Name: adminName, Active: true}
		if err := users.Create(ctx, admin); err != nil {
			return report, fmt.Errorf("creating admin user: %w", err)
		}
		report.adminCreated = true
	}

	count, err := materials.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("counting material types: %w", err)
	}
	if count > 0 {
		return report, nil
	}
	for _, m := range defaultMaterials {
		if err := materials.Create(ctx, &m); err != nil {
			return report, fmt.Errorf("creating material %q: %w", m.Name, err)
		}
		report.materialsCreated++
	}
	return report, nil
}
