package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/poles/common"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

// Dialog is a modal panel showing diagnostics. While it is open the game
// does not advance.
type Dialog struct {
	ui      *ebitenui.UI
	body    string
	open    bool
	logger  *zap.Logger
	copyErr error
	copyOK  bool
}

func NewDialog(logger *zap.Logger) *Dialog {
	d := &Dialog{logger: logger}
	if err := clipboard.Init(); err != nil {
		d.copyErr = err
		logger.Warn("clipboard unavailable", zap.Error(err))
	} else {
		d.copyOK = true
	}
	return d
}

func (d *Dialog) Open(title, body string) {
	d.body = body
	d.ui = d.build(title, body)
	d.open = true
}

func (d *Dialog) Close() {
	d.open = false
	d.ui = nil
}

func (d *Dialog) IsOpen() bool {
	return d.open
}

func (d *Dialog) Update() {
	if !d.open || d.ui == nil {
		return
	}
	d.ui.Update()
}

func (d *Dialog) Draw(screen *ebiten.Image) {
	if !d.open || d.ui == nil {
		return
	}
	d.ui.Draw(screen)
}

func (d *Dialog) copyBody() {
	if !d.copyOK {
		d.logger.Warn("copy skipped", zap.Error(d.copyErr))
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(d.body))
	d.logger.Debug("dialog copied to clipboard", zap.Int("bytes", len(d.body)))
}

func (d *Dialog) build(title, body string) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 220})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	heading := widget.NewText(
		widget.TextOpts.Text(title, &face, white),
		widget.TextOpts.WidgetOpts(center),
	)
	content := widget.NewText(
		widget.TextOpts.Text(body, &face, color.NRGBA{R: 0xc2, G: 0xc3, B: 0xc7, A: 0xff}),
	)

	copyBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
		widget.ButtonOpts.Text("Copy", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			d.copyBody()
		}),
	)
	closeBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
		widget.ButtonOpts.Text("Close", &face, btnTextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			d.Close()
		}),
	)

	buttons := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(10),
		)),
		widget.ContainerOpts.WidgetOpts(center),
	)
	buttons.AddChild(copyBtn)
	buttons.AddChild(closeBtn)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/2, common.BaseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(heading)
	panel.AddChild(content)
	panel.AddChild(buttons)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}
