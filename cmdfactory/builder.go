// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cmdfactory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kmake.sh/internal/errs"
	"kmake.sh/log"
)

var caseRegexp = regexp.MustCompile("([a-z])([A-Z])")

type PersistentPreRunnable interface {
	PersistentPre(cmd *cobra.Command, args []string) error
}

type PreRunnable interface {
	Pre(cmd *cobra.Command, args []string) error
}

type Runnable interface {
	Run(ctx context.Context, args []string) error
}

type fieldInfo struct {
	FieldType  reflect.StructField
	FieldValue reflect.Value
}

func fields(obj any) []fieldInfo {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}

	var result []fieldInfo

	for i := 0; i < objValue.NumField(); i++ {
		fieldType := objValue.Type().Field(i)
		if fieldType.Anonymous && fieldType.Type.Kind() == reflect.Struct {
			result = append(result, fields(objValue.Field(i).Addr().Interface())...)
		} else if !fieldType.Anonymous {
			result = append(result, fieldInfo{
				FieldValue: objValue.Field(i),
				FieldType:  fieldType,
			})
		}
	}

	return result
}

// Name returns the command name derived from the type name of obj, e.g.
// `ImagePull` becomes `image-pull`.
func Name(obj any) string {
	objValue := reflect.ValueOf(obj).Elem()
	commandName := strings.Replace(objValue.Type().Name(), "Command", "", 1)
	commandName, _ = name(commandName, "", "")
	return commandName
}

// Main executes the given command and returns the exit code of the process.
// An *errs.ExitError is passed through silently since the failing process has
// already reported on its own output.
func Main(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		if HasFailed() {
			return 1
		}
		return 0
	}

	var exitErr *errs.ExitError
	switch {
	case errors.As(err, &exitErr):
	case errors.Is(err, ErrSilent):
	case IsUserCancellation(err):
		log.G(ctx).Info("cancelled")
	default:
		log.G(ctx).Error(err)

		var flagErr *FlagError
		if errors.As(err, &flagErr) {
			log.G(ctx).Infof("see '%s --help' for usage", cmd.CommandPath())
		}
	}

	return errs.ExitCode(err)
}

// AttributeFlags associates a given struct with public attributes and a set of
// tags with the provided cobra command so as to enable dynamic population of
// CLI flags.  The value a flag starts with is the environment variable named
// by the `env` tag when it is set, otherwise the value currently held by the
// attribute (e.g. fed from a configuration file), otherwise the `default` tag.
func AttributeFlags(c *cobra.Command, obj any) error {
	var (
		optString = map[string]reflect.Value{}
		optBool   = map[string]reflect.Value{}
		optInt    = map[string]reflect.Value{}
	)

	for _, info := range fields(obj) {
		fieldType := info.FieldType
		v := info.FieldValue

		if !fieldType.IsExported() {
			continue
		}

		// Any structure attribute which has the tag `noattribute:"true"` is skipped
		if fieldType.Tag.Get("noattribute") == "true" {
			continue
		}

		if fieldType.Type.Kind() == reflect.Struct {
			if err := AttributeFlags(c, v.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if fieldType.Tag.Get("long") == "" && fieldType.Tag.Get("usage") == "" {
			continue
		}

		name, alias := name(fieldType.Name, fieldType.Tag.Get("long"), fieldType.Tag.Get("short"))
		usage := fieldType.Tag.Get("usage")
		defValue := fieldType.Tag.Get("default")

		envValue, fromEnv := "", false
		if envName := fieldType.Tag.Get("env"); envName != "" {
			envValue, fromEnv = os.LookupEnv(envName)
			fromEnv = fromEnv && envValue != ""
		}

		strValue := ""
		if v.Kind() != reflect.Pointer && !v.IsZero() {
			strValue = fmt.Sprint(v.Interface())
		}
		if fromEnv {
			strValue = envValue
		}
		if strValue == "" {
			strValue = defValue
		}

		flags := c.PersistentFlags()
		if fieldType.Tag.Get("local") == "true" {
			flags = c.Flags()
		}

		switch fieldType.Type.Kind() {
		case reflect.String:
			flags.StringVarP(v.Addr().Interface().(*string), name, alias, strValue, usage)
		case reflect.Bool:
			b, err := parseBool(strValue)
			if err != nil {
				return fmt.Errorf("invalid value for --%s: %w", name, err)
			}
			flags.BoolVarP(v.Addr().Interface().(*bool), name, alias, b, usage)
		case reflect.Int:
			i, err := parseInt(strValue)
			if err != nil {
				return fmt.Errorf("invalid value for --%s: %w", name, err)
			}
			flags.IntVarP(v.Addr().Interface().(*int), name, alias, i, usage)
		case reflect.Slice:
			if fieldType.Type.Elem().Kind() != reflect.String {
				continue
			}
			ptr := v.Addr().Interface().(*[]string)
			flags.StringArrayVarP(ptr, name, alias, *ptr, usage)
		case reflect.Pointer:
			var target map[string]reflect.Value
			switch fieldType.Type.Elem().Kind() {
			case reflect.String:
				flags.StringP(name, alias, defValue, usage)
				target = optString
			case reflect.Bool:
				flags.BoolP(name, alias, false, usage)
				target = optBool
			case reflect.Int:
				defInt, _ := parseInt(defValue)
				flags.IntP(name, alias, defInt, usage)
				target = optInt
			default:
				continue
			}

			target[name] = v

			// The environment marks an optional attribute as set.
			if fromEnv {
				if err := flags.Set(name, envValue); err != nil {
					return fmt.Errorf("invalid value for %s: %w", fieldType.Tag.Get("env"), err)
				}
			}
		default:
			continue
		}

		if fieldType.Tag.Get("hidden") == "true" {
			if err := flags.MarkHidden(name); err != nil {
				return err
			}
		}
	}

	c.PersistentPreRunE = bind(c.PersistentPreRunE, optInt, optBool, optString)
	c.PreRunE = bind(c.PreRunE, optInt, optBool, optString)
	c.RunE = bind(c.RunE, optInt, optBool, optString)

	return nil
}

// New populates a cobra.Command object by extracting args from struct tags of the
// Runnable obj passed.  Also the Run method is assigned to the RunE of the command.
func New(obj Runnable, cmd cobra.Command) (*cobra.Command, error) {
	c := cmd
	if c.Use == "" {
		c.Use = fmt.Sprintf("%s [SUBCOMMAND] [FLAGS]", Name(obj))
	}

	if p, ok := obj.(PersistentPreRunnable); ok {
		c.PersistentPreRunE = p.PersistentPre
	}

	if p, ok := obj.(PreRunnable); ok {
		c.PreRunE = p.Pre
	}

	c.SilenceErrors = true
	c.SilenceUsage = true
	c.DisableFlagsInUseLine = true
	c.CompletionOptions.DisableDefaultCmd = true
	c.InitDefaultHelpFlag()

	if obj != nil {
		c.RunE = func(cmd *cobra.Command, args []string) error {
			return obj.Run(cmd.Context(), args)
		}

		// Parse the attributes of this object into addressable flags for this command
		if err := AttributeFlags(&c, obj); err != nil {
			return nil, err
		}
	}

	// Set help and usage methods
	c.SetHelpFunc(rootHelpFunc)
	c.SetUsageFunc(rootUsageFunc)
	c.SetFlagErrorFunc(rootFlagErrorFunc)

	return &c, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func assignOpt[T any](app *cobra.Command, opts map[string]reflect.Value, get func(string) (T, error)) error {
	for k, v := range opts {
		flag := app.Flags().Lookup(k)
		if flag == nil || !flag.Changed {
			continue
		}

		i, err := get(k)
		if err != nil {
			return err
		}

		v.Set(reflect.ValueOf(&i))
	}

	return nil
}

func name(name, setName, short string) (string, string) {
	if setName != "" {
		return setName, short
	}
	parts := strings.Split(name, "_")
	i := len(parts) - 1
	name = caseRegexp.ReplaceAllString(parts[i], "$1-$2")
	name = strings.ToLower(name)
	result := append([]string{name}, parts[0:i]...)
	for i := 0; i < len(result); i++ {
		result[i] = strings.ToLower(result[i])
	}
	if short == "" && len(result) > 1 {
		short = result[1]
	}
	return result[0], short
}

func bind(next func(*cobra.Command, []string) error,
	optInt map[string]reflect.Value,
	optBool map[string]reflect.Value,
	optString map[string]reflect.Value,
) func(*cobra.Command, []string) error {
	if next == nil {
		return nil
	}

	return func(cmd *cobra.Command, args []string) error {
		if err := assignOpt(cmd, optInt, cmd.Flags().GetInt); err != nil {
			return err
		}
		if err := assignOpt(cmd, optBool, cmd.Flags().GetBool); err != nil {
			return err
		}
		if err := assignOpt(cmd, optString, cmd.Flags().GetString); err != nil {
			return err
		}

		return next(cmd, args)
	}
}
