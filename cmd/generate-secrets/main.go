package main

import (
	"fmt"
	"log"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Session Secret Generator for HomeRent")
	fmt.Println("===========================================")
	fmt.Println()

	signingSecret, encryptionKey, err := utils.GenerateSessionSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to the web front-end's .env file:")
	fmt.Println()
	fmt.Printf("SESSION_SECRET=%s\n", signingSecret)
	fmt.Printf("SESSION_ENCRYPTION_KEY=%s\n", encryptionKey)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Rotating SESSION_ENCRYPTION_KEY signs every web user out.")
	fmt.Println("===========================================")
}
