package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"strconv"

	"skillnet/config"

	"github.com/go-sql-driver/mysql"
)

// 子表在前
var tables = []string{"friendship", "competence", "user"}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "config file path")
	yes := flag.Bool("yes", false, "skip confirmation")
	flag.Parse()

	cfg := config.LoadConfigFrom(*configPath)
	if cfg.Database.Driver != "" && cfg.Database.Driver != "mysql" {
		log.Fatalf("reset_db only supports mysql, got driver %q", cfg.Database.Driver)
	}

	db, err := sql.Open("mysql", buildDSN(cfg.Database))
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Print("Type 'YES' to confirm: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	failed := 0
	for _, table := range tables {
		fmt.Printf("Truncating table %s... ", table)
		// TRUNCATE 同时重置自增ID
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			failed++
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	if failed > 0 {
		fmt.Printf("\nDatabase reset finished with %d failed table(s)\n", failed)
		return
	}
	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved, auto-increment IDs reset to 1")
}

func buildDSN(c config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	if c.Charset != "" {
		mc.Params = map[string]string{"charset": c.Charset}
	}
	return mc.FormatDSN()
}
