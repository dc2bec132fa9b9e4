// Command admin manages administrator accounts from the command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"askmate/internal/config"
	"askmate/internal/database"
	"askmate/internal/models"
	"askmate/internal/repository"
	"askmate/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <email|username> [role]   - Add user to a role (default Admin)")
	fmt.Println("  admin demote <email|username> [role]    - Remove user from a role (default Admin)")
	fmt.Println("  admin grant-claim <email|username>      - Give user the IsAdmin=true claim")
	fmt.Println("  admin list-admins [role]                - List members of a role (default Admin)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := repository.New(db)
	admin := service.NewAdministrationService(repo)

	args := os.Args[2:]
	roleArg := func(i int) string {
		if len(args) > i && strings.TrimSpace(args[i]) != "" {
			return args[i]
		}
		return models.RoleAdmin
	}

	switch os.Args[1] {
	case "promote":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		user, err := admin.PromoteUser(ctx, args[0], roleArg(1))
		if err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
		fmt.Printf("Promoted %s (ID: %s) to %s\n", user.UserName, user.ID, roleArg(1))

	case "demote":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		demote(ctx, repo, admin, args[0], roleArg(1))

	case "grant-claim":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		user := findUser(ctx, repo, args[0])
		claim := &models.UserClaim{UserID: user.ID, ClaimType: models.ClaimIsAdmin, ClaimValue: "true"}
		if err := admin.AddClaim(ctx, claim); err != nil {
			log.Fatalf("Failed to add claim: %v", err)
		}
		fmt.Printf("Granted %s=true to %s\n", models.ClaimIsAdmin, user.UserName)

	case "list-admins":
		listAdmins(ctx, admin, roleArg(0))

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func findUser(ctx context.Context, repo repository.Repository, login string) *models.User {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = repo.GetUserByEmail(ctx, login)
	} else {
		user, err = repo.GetUserByUserName(ctx, login)
	}
	if models.IsNotFound(err) {
		fmt.Printf("User %s not found\n", login)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	return user
}

func demote(ctx context.Context, repo repository.Repository, admin *service.AdministrationService, login, roleName string) {
	user := findUser(ctx, repo, login)
	role, err := repo.GetRoleByName(ctx, roleName)
	if err != nil {
		log.Fatalf("Role %s: %v", roleName, err)
	}
	if err := admin.UpdateMembers(ctx, role.ID, nil, []string{user.ID}); err != nil {
		log.Fatalf("Failed to demote user: %v", err)
	}
	fmt.Printf("Removed %s from %s\n", user.UserName, roleName)
}

func listAdmins(ctx context.Context, admin *service.AdministrationService, roleName string) {
	members, err := admin.RoleMembers(ctx, roleName)
	if models.IsNotFound(err) {
		fmt.Printf("Role %s does not exist\n", roleName)
		return
	}
	if err != nil {
		log.Fatalf("Failed to fetch members: %v", err)
	}
	if len(members) == 0 {
		fmt.Printf("No members in %s\n", roleName)
		return
	}

	fmt.Printf("\nMembers of %s:\n", roleName)
	fmt.Println("-------------------------------------")
	for _, u := range members {
		fmt.Printf("ID: %s | Username: %s | Email: %s\n", u.ID, u.UserName, u.Email)
	}
	fmt.Println("-------------------------------------")
}
