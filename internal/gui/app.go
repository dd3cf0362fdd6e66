// Desktop front end: collects PIN, keys and an image, shows the derived key
package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"cancellable-biokey/internal/core"
	"cancellable-biokey/internal/io"
)

// Processor is the part of the pipeline the window needs.
type Processor interface {
	Process(ctx context.Context, req core.Request) (*core.Result, error)
}

// Application is the main window. Display state lives here; the pipeline is
// stateless per call.
type Application struct {
	app       fyne.App
	window    fyne.Window
	logger    logrus.FieldLogger
	processor Processor

	pinEntry     *widget.Entry
	keyEntries   [3]*widget.Entry
	uploadButton *widget.Button
	resultLabel  *widget.Label
}

func NewApplication(app fyne.App, processor Processor, logger logrus.FieldLogger) *Application {
	window := app.NewWindow("Cancellable Biometrics with MFA")
	window.Resize(fyne.NewSize(600, 500))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		processor: processor,
	}
	a.buildUI()
	return a
}

func (a *Application) buildUI() {
	a.pinEntry = widget.NewPasswordEntry()
	a.pinEntry.SetPlaceHolder("Numeric PIN")
	for i := range a.keyEntries {
		a.keyEntries[i] = widget.NewPasswordEntry()
	}

	form := widget.NewForm(
		widget.NewFormItem("Enter Numeric PIN:", a.pinEntry),
		widget.NewFormItem("Enter Key 1:", a.keyEntries[0]),
		widget.NewFormItem("Enter Key 2:", a.keyEntries[1]),
		widget.NewFormItem("Enter Key 3:", a.keyEntries[2]),
	)

	a.uploadButton = widget.NewButton("Upload Fingerprint Image", a.selectImage)
	a.resultLabel = widget.NewLabel("")
	a.resultLabel.Wrapping = fyne.TextWrapBreak
	a.resultLabel.Alignment = fyne.TextAlignCenter

	a.window.SetContent(container.NewVBox(
		form,
		a.uploadButton,
		a.resultLabel,
	))
}

func (a *Application) selectImage() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		a.run(a.request(path))
	}, a.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(io.SupportedExtensions()))
	fileDialog.Show()
}

func (a *Application) request(path string) core.Request {
	return core.Request{
		ImagePath: path,
		PIN:       a.pinEntry.Text,
		Key1:      a.keyEntries[0].Text,
		Key2:      a.keyEntries[1].Text,
		Key3:      a.keyEntries[2].Text,
	}
}

// run processes one request off the UI goroutine; the button stays disabled
// until it completes so invocations never overlap.
func (a *Application) run(req core.Request) {
	a.uploadButton.Disable()
	a.resultLabel.SetText("Processing...")

	go func() {
		res, err := a.processor.Process(context.Background(), req)
		fyne.Do(func() {
			defer a.uploadButton.Enable()
			if err != nil {
				a.logger.WithError(err).Error("Fingerprint processing failed")
				a.resultLabel.SetText("")
				dialog.ShowError(err, a.window)
				return
			}
			a.resultLabel.SetText(fmt.Sprintf("Generated Hash Key:\n%s", res.Key.Hex()))
			dialog.ShowInformation("Processing Complete", "Fingerprint processing completed successfully!", a.window)
		})
	}()
}

func (a *Application) ShowAndRun() {
	a.window.ShowAndRun()
}
