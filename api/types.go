package api

import "image"

// ShadertoyResponse is the envelope returned by the Shadertoy API.
type ShadertoyResponse struct {
	Shader *Shader `json:"Shader"`
	Error  string  `json:"Error,omitempty"`
	IsAPI  bool    `json:"isAPI,omitempty"`
}

type Shader struct {
	Info       ShaderInfo   `json:"info"`
	RenderPass []RenderPass `json:"renderpass"`
}

type ShaderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RenderPass struct {
	Inputs []Input `json:"inputs"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
}

type Input struct {
	Channel int     `json:"channel"`
	CType   string  `json:"ctype"`
	Src     string  `json:"src"`
	Sampler Sampler `json:"sampler"`
}

type Sampler struct {
	Filter string `json:"filter"`
	Wrap   string `json:"wrap"`
	VFlip  string `json:"vflip"`
}

// the site endpoint returns a slightly different shape than the API
type rawShader struct {
	Info          ShaderInfo      `json:"info"`
	RawRenderPass []rawRenderPass `json:"renderpass"`
}

type rawRenderPass struct {
	Inputs []rawInput `json:"inputs"`
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Type   string     `json:"type"`
}

type rawInput struct {
	Filepath string  `json:"filepath"`
	Type     string  `json:"type"`
	Channel  int     `json:"channel"`
	Sampler  Sampler `json:"sampler"`
}

func rawShaderToShader(raw rawShader) *Shader {
	shader := &Shader{
		Info:       raw.Info,
		RenderPass: make([]RenderPass, len(raw.RawRenderPass)),
	}
	for i, rPass := range raw.RawRenderPass {
		shader.RenderPass[i] = RenderPass{
			Inputs: make([]Input, len(rPass.Inputs)),
			Code:   rPass.Code,
			Name:   rPass.Name,
			Type:   rPass.Type,
		}
		for j, inp := range rPass.Inputs {
			shader.RenderPass[i].Inputs[j] = Input{
				Channel: inp.Channel,
				CType:   inp.Type,
				Src:     inp.Filepath,
				Sampler: inp.Sampler,
			}
		}
	}
	return shader
}

// Channel is a downloaded image-pass input.
type Channel struct {
	CType   string
	Channel int
	Sampler Sampler
	Image   image.Image
}

// ShaderArgs is the single-pass subset of a Shadertoy shader that can run
// as a background.
type ShaderArgs struct {
	ShaderCode string
	CommonCode string
	Inputs     [4]*Channel
	Title      string
	// Complete is false when the shader uses passes or inputs that were
	// dropped.
	Complete bool
}

// Source returns the common code followed by the image pass.
func (a *ShaderArgs) Source() string {
	if a.CommonCode == "" {
		return a.ShaderCode
	}
	return a.CommonCode + "\n" + a.ShaderCode
}
