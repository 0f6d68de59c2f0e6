package mcpserver

import (
	"context"
	"fmt"

	"whiteboard/internal/geometry"
	"whiteboard/internal/shape"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerShapeTools() {
	s.mcp.AddTool(mcp.NewTool("list_shapes",
		mcp.WithDescription("List every shape on the board in paint order (last is on top)"),
	), s.handleListShapes)

	s.mcp.AddTool(mcp.NewTool("add_rect",
		mcp.WithDescription("Add an outline rectangle"),
		mcp.WithNumber("x", mcp.Description("Left edge"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Top edge"), mcp.Required()),
		mcp.WithNumber("w", mcp.Description("Width"), mcp.Required()),
		mcp.WithNumber("h", mcp.Description("Height"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Stroke color hex (optional, default #000000)")),
	), s.handleAddRect)

	s.mcp.AddTool(mcp.NewTool("add_circle",
		mcp.WithDescription("Add an outline circle"),
		mcp.WithNumber("cx", mcp.Description("Center X"), mcp.Required()),
		mcp.WithNumber("cy", mcp.Description("Center Y"), mcp.Required()),
		mcp.WithNumber("radius", mcp.Description("Radius"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Stroke color hex (optional, default #000000)")),
	), s.handleAddCircle)

	s.mcp.AddTool(mcp.NewTool("add_text",
		mcp.WithDescription("Add a single line of text anchored at its top-left corner"),
		mcp.WithNumber("x", mcp.Description("Left edge"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Top edge"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Text content"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Text color hex (optional, default #111)")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in pixels (optional, default 22)")),
	), s.handleAddText)

	s.mcp.AddTool(mcp.NewTool("add_path",
		mcp.WithDescription("Add a freehand stroke through the given points"),
		mcp.WithString("points", mcp.Description(`JSON array of points, e.g. [{"x":1,"y":2},{"x":5,"y":8}]`), mcp.Required()),
		mcp.WithString("color", mcp.Description("Stroke color hex (optional, default #000000)")),
		mcp.WithNumber("width", mcp.Description("Stroke width (optional, default 2)")),
	), s.handleAddPath)

	s.mcp.AddTool(mcp.NewTool("move_shape",
		mcp.WithDescription("Move a shape by an offset"),
		mcp.WithString("id", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
	), s.handleMoveShape)

	s.mcp.AddTool(mcp.NewTool("resize_shape",
		mcp.WithDescription("Fit a rect, circle or image into a new box"),
		mcp.WithString("id", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Box left edge"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Box top edge"), mcp.Required()),
		mcp.WithNumber("w", mcp.Description("Box width"), mcp.Required()),
		mcp.WithNumber("h", mcp.Description("Box height"), mcp.Required()),
	), s.handleResizeShape)

	s.mcp.AddTool(mcp.NewTool("delete_shape",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a shape by ID"),
		mcp.WithString("id", mcp.Description("Shape ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteShape)
}

func (s *Server) handleListShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.board.Shapes())
}

func (s *Server) handleAddRect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	box, err := boxArgs(args)
	if err != nil {
		return nil, err
	}
	return s.add(shape.KindRect, shape.Attrs{
		X: box.X, Y: box.Y, W: box.W, H: box.H,
		Color: optionalString(args, "color"),
	})
}

func (s *Server) handleAddCircle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	cx, err := number(args, "cx")
	if err != nil {
		return nil, err
	}
	cy, err := number(args, "cy")
	if err != nil {
		return nil, err
	}
	r, err := number(args, "radius")
	if err != nil {
		return nil, err
	}
	if r < 0 {
		return nil, fmt.Errorf("radius must not be negative")
	}
	// A drag of (r, 0) from the center yields radius r.
	return s.add(shape.KindCircle, shape.Attrs{
		X: cx, Y: cy, W: r,
		Color: optionalString(args, "color"),
	})
}

func (s *Server) handleAddText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	x, err := number(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := number(args, "y")
	if err != nil {
		return nil, err
	}
	text, err := str(args, "text")
	if err != nil {
		return nil, err
	}
	return s.add(shape.KindText, shape.Attrs{
		X: x, Y: y, Text: text,
		Color:    optionalString(args, "color"),
		FontSize: optionalNumber(args, "fontSize", shape.DefaultFontSize),
	})
}

func (s *Server) handleAddPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, err := str(args, "points")
	if err != nil {
		return nil, err
	}
	var points []shape.Point
	if err := parseJSON(raw, &points); err != nil {
		return nil, fmt.Errorf("invalid points JSON: %w", err)
	}
	return s.add(shape.KindPath, shape.Attrs{
		Points: points,
		Color:  optionalString(args, "color"),
		Width:  optionalNumber(args, "width", shape.DefaultStrokeWidth),
	})
}

func (s *Server) handleMoveShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := str(args, "id")
	if err != nil {
		return nil, err
	}
	dx, err := number(args, "dx")
	if err != nil {
		return nil, err
	}
	dy, err := number(args, "dy")
	if err != nil {
		return nil, err
	}
	if err := s.board.MoveShape(id, dx, dy); err != nil {
		return nil, err
	}
	return s.shapeResult(id)
}

func (s *Server) handleResizeShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := str(args, "id")
	if err != nil {
		return nil, err
	}
	box, err := boxArgs(args)
	if err != nil {
		return nil, err
	}
	if err := s.board.ResizeShape(id, box); err != nil {
		return nil, err
	}
	return s.shapeResult(id)
}

func (s *Server) handleDeleteShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := str(req.GetArguments(), "id")
	if err != nil {
		return nil, err
	}
	if err := s.board.DeleteShape(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted shape %s", id)), nil
}

func (s *Server) add(kind shape.Kind, attrs shape.Attrs) (*mcp.CallToolResult, error) {
	sh, err := shape.New(kind, attrs)
	if err != nil {
		return nil, err
	}
	s.board.Add(sh)
	return jsonResult(shape.ToRecord(sh))
}

func (s *Server) shapeResult(id string) (*mcp.CallToolResult, error) {
	sh, ok := s.board.Shapes().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shape.ErrNotFound, id)
	}
	return jsonResult(shape.ToRecord(sh))
}

func boxArgs(args map[string]any) (geometry.Box, error) {
	var box geometry.Box
	for _, f := range []struct {
		key string
		dst *float64
	}{{"x", &box.X}, {"y", &box.Y}, {"w", &box.W}, {"h", &box.H}} {
		v, err := number(args, f.key)
		if err != nil {
			return geometry.Box{}, err
		}
		*f.dst = v
	}
	return box, nil
}
