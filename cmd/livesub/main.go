// LiveSub - живые субтитры для речи с микрофона или звука рабочего стола.
//
// Работает в системном трее: звук режется на окна по пять секунд,
// каждое окно отправляется локальному серверу Whisper, перевод
// показывается в окне субтитров поверх всех окон.
// С флагом -console вместо трея открывается терминальный интерфейс.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"livesub/internal/app"
	"livesub/internal/hotkey"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	var opts app.Options
	flag.StringVar(&opts.ConfigPath, "config", "", "путь к файлу настроек (по умолчанию рядом с программой)")
	flag.BoolVar(&opts.Console, "console", false, "терминальный интерфейс вместо трея")
	flag.BoolVar(&opts.Debug, "debug", false, "отладочный режим: заготовленные фразы вместо сервера")
	flag.StringVar(&opts.ServerURL, "server", "", "адрес сервера Whisper, например http://localhost:5001")
	flag.Parse()

	log.Printf("LiveSub %s запускается...", Version)

	if opts.Console {
		// В терминале логи мешают интерфейсу
		log.SetOutput(logFile())
		run(opts)
		return
	}

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() { run(opts) })
}

func run(opts app.Options) {
	application, err := app.New(opts)
	if err != nil {
		log.Printf("Ошибка инициализации: %v", err)
		os.Exit(1)
	}

	log.Printf("Приложение запущено. Настройки: %s", application.ConfigPath())
	if err := application.Run(); err != nil {
		log.Printf("Ошибка: %v", err)
		os.Exit(1)
	}
}

// logFile открывает livesub.log во временном каталоге.
func logFile() *os.File {
	f, err := os.OpenFile(filepath.Join(os.TempDir(), "livesub.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}
