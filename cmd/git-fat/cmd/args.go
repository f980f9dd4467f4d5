// Copyright © 2018 One Concern

package cmd

import "path/filepath"

// absPaths resolves paths given on the command line against the current directory
func absPaths(args []string) ([]string, error) {
	res := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}
