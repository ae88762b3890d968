package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/sampler"
)

// SpeakCLI reads seed lines from stdin and prints a completion for each.
// Type 'exit' to quit.
func SpeakCLI(s *sampler.Sampler, length int, temperature float64) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Shakespeare generator. Type a seed, or 'exit' to quit.")
	for {
		fmt.Print("Seed: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}
		text, err := s.Generate(input, length, temperature)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Println(text)
	}
}
