// Package embedded содержит встроенные ресурсы приложения.
package embedded

import (
	_ "embed"
)

// IconIdle - иконка в состоянии ожидания (серая).
//
//go:embed icon_idle.png
var IconIdle []byte

// IconStarting - иконка во время открытия устройства (оранжевая).
//
//go:embed icon_starting.png
var IconStarting []byte

// IconTranslating - иконка во время перевода (зелёная).
//
//go:embed icon_translating.png
var IconTranslating []byte

// IconError - иконка ошибки устройства (красная).
//
//go:embed icon_error.png
var IconError []byte
