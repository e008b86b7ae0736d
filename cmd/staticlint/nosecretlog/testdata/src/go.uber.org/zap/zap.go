package zap

type Field struct{}

func String(key, value string) Field { return Field{} }

func Int(key string, value int) Field { return Field{} }
