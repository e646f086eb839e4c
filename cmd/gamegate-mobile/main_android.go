// SPDX-License-Identifier: Apache-2.0
//go:build android

package main

import (
	"context"
	"os"

	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/gl"
)

func main() {
	app.Main(func(a app.App) {
		sh, err := setup(context.Background(), os.Exit)
		if err != nil {
			fatal(err)
		}

		var glctx gl.Context
		var sz size.Event
		for e := range a.Events() {
			e = a.Filter(e)
			sh.Handle(e)

			switch e := e.(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, _ = e.DrawContext.(gl.Context)
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					glctx = nil
				}
			case size.Event:
				sz = e
			case paint.Event:
				if glctx == nil || e.External {
					continue
				}
				w, h := sh.viewport.Size(sz.WidthPx, sz.HeightPx)
				glctx.Viewport(0, 0, w, h)
				glctx.ClearColor(0, 0, 0, 1)
				glctx.Clear(gl.COLOR_BUFFER_BIT)
				a.Publish()
			}
		}
	})
}
