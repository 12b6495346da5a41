// Command tokengen mints development tokens for the notification
// gateway. The secret must match the JWT_SECRET the hub runs with.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"chat-notify/auth"
	"chat-notify/domain"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user-id", 0, "user id to mint the token for")
	wsID := flag.Int64("ws-id", 1, "workspace id claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
	flag.Parse()

	if *userID == 0 || *secret == "" {
		color.Red.Println("Both --user-id and a secret are required")
		flag.Usage()
		os.Exit(1)
	}

	token, err := auth.GenerateToken(*secret, domain.UserID(*userID), *wsID, *ttl)
	if err != nil {
		color.Red.Printf("Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"User", "Workspace", "Expires", "Token"})
	table.SetColWidth(80)
	table.Append([]string{
		strconv.FormatInt(*userID, 10),
		strconv.FormatInt(*wsID, 10),
		time.Now().Add(*ttl).Format(time.RFC3339),
		token,
	})
	table.Render()

	color.Green.Println("Connect with:")
	fmt.Printf("  curl -N -H 'Authorization: Bearer %s' http://localhost:6687/events\n", token)
}
