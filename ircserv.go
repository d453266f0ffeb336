// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"
	"golang.org/x/term"

	"github.com/lschrafstetter/42-ft-irc/irc"
	"github.com/lschrafstetter/42-ft-irc/irc/logger"
	"github.com/lschrafstetter/42-ft-irc/irc/passwd"
)

// get a password from stdin from the user
func getPasswordFromTerminal() string {
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Error reading password:", err.Error())
	}
	return string(bytePassword)
}

// implements the `ircserv genpasswd` command
func doGenpasswd() {
	var password string
	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Enter Password: ")
		password = getPasswordFromTerminal()
		fmt.Print("\n")
		fmt.Print("Reenter Password: ")
		confirm := getPasswordFromTerminal()
		fmt.Print("\n")
		if confirm != password {
			log.Fatal("passwords do not match")
		}
	} else {
		reader := bufio.NewReader(os.Stdin)
		text, _ := reader.ReadString('\n')
		password = strings.TrimSpace(text)
	}
	if password == "" {
		log.Fatal("password must not be empty")
	}
	hash, err := passwd.GenerateFromPassword([]byte(password), passwd.DefaultCost)
	if err != nil {
		log.Fatal("encoding error:", err.Error())
	}
	fmt.Println(string(hash))
}

func main() {
	usage := `ircserv.
Usage:
	ircserv [run] <port> <password> [--conf <filename>]
	ircserv genpasswd
	ircserv -h | --help
	ircserv --version
Options:
	--conf <filename>  Configuration file to use.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, irc.Ver)

	if arguments["genpasswd"].(bool) {
		doGenpasswd()
		return
	}

	port, err := irc.ParsePort(arguments["<port>"].(string))
	if err != nil {
		log.Fatal(err.Error())
	}
	password := arguments["<password>"].(string)
	if password == "" {
		log.Fatal("password must not be empty")
	}

	config := irc.DefaultConfig()
	if configfile, ok := arguments["--conf"].(string); ok && configfile != "" {
		config, err = irc.LoadConfig(configfile)
		if err != nil {
			log.Fatal("Config file did not load successfully: ", err.Error())
		}
	}
	config.Port = port
	config.Password = password

	logman, err := logger.NewManager(config.Logging)
	if err != nil {
		log.Fatal("Logger did not load successfully:", err.Error())
	}

	logman.Info("server", fmt.Sprintf("ircserv %s starting", irc.Ver))
	server, err := irc.NewServer(config, logman)
	if err != nil {
		logman.Error("server", fmt.Sprintf("Could not load server: %s", err.Error()))
		os.Exit(1)
	}
	if err := server.Run(); err != nil {
		logman.Error("server", fmt.Sprintf("Server terminated: %s", err.Error()))
		os.Exit(1)
	}
}
