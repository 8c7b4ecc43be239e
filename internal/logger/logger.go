/*
 *     Copyright 2023 The Urchin Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger is a thin sugared wrapper around zap, shared by all
// urchin-train packages.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	coreLogger  *zap.SugaredLogger
	levelSetter zap.AtomicLevel
)

func init() {
	levelSetter = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	config := zap.NewProductionConfig()
	config.Level = levelSetter
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	log, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	coreLogger = log.Sugar()
}

// SetLevel changes the log level of the process-wide logger.
func SetLevel(level zapcore.Level) {
	levelSetter.SetLevel(level)
}

// With returns a logger with extra structured context.
func With(args ...interface{}) *zap.SugaredLogger {
	return coreLogger.With(args...)
}

func Debugf(template string, args ...interface{}) {
	coreLogger.Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	coreLogger.Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	coreLogger.Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	coreLogger.Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	coreLogger.Fatalf(template, args...)
}
